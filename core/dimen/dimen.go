// Package dimen implements dimensions and units.
//
/*
BSD License

Copyright (c) 2017–21, Norbert Pillmayer (norbert@pillmayer.com)

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.  */
package dimen

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Dimen is a dimension type.
// Values are in scaled big points (different from TeX).
type Dimen int32

// Some pre-defined dimensions
const (
	Zero Dimen = 0
	SP   Dimen = 1       // scaled point = BP / 65536
	BP   Dimen = 65536   // big point (PDF) = 1/72 inch
	PT   Dimen = 65291   // printers point 1/72.27 inch
	MM   Dimen = 185771  // millimeters
	CM   Dimen = 1857710 // centimeters
	IN   Dimen = 4718592 // inch
)

// Stringer implementation, in big points.
func (d Dimen) String() string {
	return strconv.FormatFloat(d.Points(), 'f', -1, 64) + "bp"
}

// Points returns a dimension in big (PDF) points.
func (d Dimen) Points() float64 {
	return float64(d) / float64(BP)
}

// FromPoints creates a dimension from a value in big (PDF) points.
func FromPoints(pt float64) Dimen {
	return Dimen(math.Round(pt * float64(BP)))
}

// Scale multiplies a dimension by a factor, rounding to the nearest scaled point.
func (d Dimen) Scale(f float64) Dimen {
	return Dimen(math.Round(float64(d) * f))
}

// Point is a point on a page, or the extent of a page.
type Point struct {
	X, Y Dimen
}

func (p Point) String() string {
	return fmt.Sprintf("(%s,%s)", p.X, p.Y)
}

// Rect is a rectangle (on a page).
type Rect struct {
	TopL, BotR Point
}

// Width returns the width of a rectangle, i.e. the difference between x-coordinates
// of bottom-right and top-left corner.
func (r Rect) Width() Dimen {
	return r.BotR.X - r.TopL.X
}

// Height returns the height of a rectangle, i.e. the difference between y-coordinates
// of bottom-right and top-left corner.
func (r Rect) Height() Dimen {
	return r.BotR.Y - r.TopL.Y
}

// Inset returns the area of a page of size paper inside of the margins,
// given in CSS order.
func Inset(paper Point, top, right, bottom, left Dimen) Rect {
	return Rect{
		TopL: Point{left, top},
		BotR: Point{paper.X - right, paper.Y - bottom},
	}
}

// --- Paper -----------------------------------------------------------------

// Some common paper sizes, in portrait orientation.
var (
	DINA3    = Point{297 * MM, 420 * MM}
	DINA4    = Point{210 * MM, 297 * MM}
	DINA5    = Point{148 * MM, 210 * MM}
	USLetter = Point{216 * MM, 279 * MM}
	USLegal  = Point{216 * MM, 356 * MM}
)

var paperSizes = map[string]Point{
	"a3":     DINA3,
	"a4":     DINA4,
	"a5":     DINA5,
	"letter": USLetter,
	"legal":  USLegal,
}

// PaperSize returns the portrait size of a named paper format, as in CSS
// page sizes: A3, A4, A5, letter, legal. Case is ignored.
func PaperSize(name string) (Point, bool) {
	p, ok := paperSizes[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Landscape returns a paper size turned to landscape orientation.
func (p Point) Landscape() Point {
	if p.X < p.Y {
		return Point{p.Y, p.X}
	}
	return p
}

// ---------------------------------------------------------------------------

var dimenPattern = regexp.MustCompile(`^([+\-]?[0-9]*\.?[0-9]+)(%|[a-zA-Z]{2})?$`)

// ErrDimenFormat is returned by ParseDimen for malformed input.
var ErrDimenFormat = errors.New("format error parsing dimension")

// ParseDimen parses a string to return a dimension. Syntax is CSS Unit.
// If a percentage value is given (`80%`), the second return value will be true
// and the dimension holds the percentage as an integer.
// A number without a unit is interpreted as big points, as are pixels.
//
func ParseDimen(s string) (Dimen, bool, error) {
	d := dimenPattern.FindStringSubmatch(strings.TrimSpace(s))
	if len(d) < 2 {
		return 0, false, ErrDimenFormat
	}
	scale := BP
	ispcnt := false
	if len(d) > 2 {
		switch strings.ToLower(d[2]) {
		case "pt":
			scale = PT
		case "mm":
			scale = MM
		case "bp", "px", "":
			scale = BP
		case "cm":
			scale = CM
		case "in":
			scale = IN
		case "sp":
			scale = SP
		case "%":
			scale, ispcnt = 1, true
		default:
			return 0, false, ErrDimenFormat
		}
	}
	n, err := strconv.ParseFloat(d[1], 64)
	if err != nil {
		return 0, false, ErrDimenFormat
	}
	return Dimen(math.Round(n * float64(scale))), ispcnt, nil
}
