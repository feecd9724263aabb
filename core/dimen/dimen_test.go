package dimen

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestParseDimen(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.core")
	defer teardown()
	//
	d, _, err := ParseDimen("12px")
	if err != nil {
		t.Errorf("(1) %s", err.Error())
	} else if d != 12*BP {
		t.Errorf("(1) expected d to be 12bp (%d), is %d", 12*BP, d)
	}
	//
	d, _, err = ParseDimen("0")
	if err != nil {
		t.Errorf("(2) %s", err.Error())
	} else if d != 0 {
		t.Errorf("(2) expected d to be 0, is %d", d)
	}
	//
	d, ispcnt, err := ParseDimen("20%")
	if err != nil {
		t.Errorf("(3) %s", err.Error())
	} else if ispcnt != true {
		t.Errorf("(3) expected percentage-marker to be true, is %v", ispcnt)
	} else if d != 20 {
		t.Errorf("(3) expected percentage to be 20, is %d", d)
	}
	//
	d, _, err = ParseDimen("10.5pt")
	if err != nil {
		t.Errorf("(4) %s", err.Error())
	} else if d.Points() < 10.4 || d.Points() > 10.5 {
		t.Errorf("(4) expected 10.5pt to be slightly less than 10.5bp, is %.3f", d.Points())
	}
	//
	if _, _, err = ParseDimen("12furlongs"); err == nil {
		t.Errorf("(5) expected unknown unit to be rejected")
	}
}

func TestPageInset(t *testing.T) {
	r := Inset(DINA4, 8*MM, 10*MM, 8*MM, 20*MM)
	if r.Width() != DINA4.X-30*MM {
		t.Errorf("expected page width minus margins, have %s", r.Width())
	}
	if r.Height() != DINA4.Y-16*MM {
		t.Errorf("expected page height minus margins, have %s", r.Height())
	}
	if r.TopL.X != 20*MM {
		t.Errorf("expected content to start at left margin, is %s", r.TopL.X)
	}
	if FromPoints(12).Points() != 12 {
		t.Errorf("expected FromPoints/Points to be inverse")
	}
	if s := (12 * BP).String(); s != "12bp" {
		t.Errorf("expected 12bp, have %s", s)
	}
}

func TestPaperSize(t *testing.T) {
	p, ok := PaperSize(" Letter ")
	if !ok || p != USLetter {
		t.Errorf("expected letter paper size, have %v", p)
	}
	if _, ok = PaperSize("a0"); ok {
		t.Errorf("expected a0 to be unknown")
	}
	if l := DINA4.Landscape(); l.X != 297*MM || l.Landscape() != l {
		t.Errorf("expected landscape A4 to be 297mm wide, is %s", l.X)
	}
}
