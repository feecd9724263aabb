package ot

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// NameID identifies an entry of the name table.
type NameID uint16

// Name IDs used by mdpdf.
const (
	NameFontFamily     NameID = 1
	NameFontSubfamily  NameID = 2
	NameFull           NameID = 4
	NamePostScript     NameID = 6
	NameTypographicFam NameID = 16
)

// NameTable holds the naming records of a font.
type NameTable struct {
	TableBase
	records []nameRecord
	strbuf  fontBinSegm
}

type nameRecord struct {
	platformID, encodingID, languageID uint16
	nameID                             NameID
	length, offset                     uint16
}

func parseNames(tag Tag, b fontBinSegm, offset, size uint32) (Table, error) {
	if len(b) < 6 {
		return nil, errFontFormat("name section corrupt")
	}
	N, _ := b.u16(2)
	strOffset, _ := b.u16(4)
	if len(b) < 6+12*int(N) || int(strOffset) > len(b) {
		return nil, errFontFormat("name section corrupt")
	}
	t := &NameTable{TableBase: base(tag, b, offset, size), strbuf: b[strOffset:]}
	tracer().Debugf("name table has %d strings, starting at %d", N, strOffset)
	for i := 0; i < int(N); i++ {
		r := b[6+12*i:]
		t.records = append(t.records, nameRecord{
			platformID: u16(r),
			encodingID: u16(r[2:]),
			languageID: u16(r[4:]),
			nameID:     NameID(u16(r[6:])),
			length:     u16(r[8:]),
			offset:     u16(r[10:]),
		})
	}
	return t, nil
}

// lookup prefers Windows/Unicode records over Macintosh records.
func (t *NameTable) lookup(id NameID) string {
	var fallback string
	for _, rec := range t.records {
		if rec.nameID != id {
			continue
		}
		raw, err := t.strbuf.view(int(rec.offset), int(rec.length))
		if err != nil {
			continue
		}
		dec := decoder(rec.platformID, rec.encodingID)
		if dec == nil {
			continue
		}
		s, err := dec.Bytes(raw)
		if err != nil {
			continue
		}
		if rec.platformID == pidMacintosh {
			if fallback == "" {
				fallback = string(s)
			}
			continue
		}
		return string(s)
	}
	return fallback
}

func decoder(pid, psid uint16) *encoding.Decoder {
	switch pid {
	case pidUnicode, pidWindows:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	case pidMacintosh:
		if psid == psidMacintoshRoman {
			return charmap.Macintosh.NewDecoder()
		}
	}
	return nil
}
