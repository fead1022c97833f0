// Package projection maps (label index, value) pairs to pixel coordinates
// for one viewport.
package projection

import "math"

// Params describes a viewport. Begin and End are fractions of the full
// x extent; padding is applied only at the absolute edges of the data.
type Params struct {
	Begin, End      float64
	TotalXWidth     float64
	YMin, YMax      float64
	AvailableWidth  float64
	AvailableHeight float64
	XPadding        float64
	YPadding        float64
}

// Overrides replaces selected Params fields in Copy. Nil fields are kept.
type Overrides struct {
	Begin, End      *float64
	YMin, YMax      *float64
	AvailableWidth  *float64
	AvailableHeight *float64
	XPadding        *float64
	YPadding        *float64
}

// Projection is an immutable linear mapping built from Params.
type Projection struct {
	params Params

	xFactor         float64
	xOffsetPx       float64
	yFactor         float64
	yOffsetPx       float64
	effectiveHeight float64
}

// New computes the factors and offsets for the given parameters.
func New(p Params) *Projection {
	effectiveWidth := p.AvailableWidth
	if p.Begin == 0 {
		effectiveWidth -= p.XPadding
	}
	if p.End == 1 {
		effectiveWidth -= p.XPadding
	}

	xSpan := (p.End - p.Begin) * p.TotalXWidth
	if xSpan == 0 {
		xSpan = 1
	}
	xFactor := effectiveWidth / xSpan

	xOffsetPx := p.Begin * p.TotalXWidth * xFactor
	if p.Begin == 0 {
		xOffsetPx -= p.XPadding
	}

	effectiveHeight := p.AvailableHeight - p.YPadding
	ySpan := p.YMax - p.YMin
	if ySpan == 0 {
		ySpan = 1
	}
	yFactor := effectiveHeight / ySpan

	return &Projection{
		params:          p,
		xFactor:         xFactor,
		xOffsetPx:       xOffsetPx,
		yFactor:         yFactor,
		yOffsetPx:       p.YMin * yFactor,
		effectiveHeight: effectiveHeight,
	}
}

// ToPixels returns the pixel position of a value at a label index.
// Y grows downwards from the top of the viewport.
func (p *Projection) ToPixels(labelIndex, value float64) (x, y float64) {
	x = labelIndex*p.xFactor - p.xOffsetPx
	y = p.params.AvailableHeight - (value*p.yFactor - p.yOffsetPx)
	return x, y
}

// FindClosestLabelIndex returns the label index nearest to a pixel x.
func (p *Projection) FindClosestLabelIndex(xPx float64) int {
	return int(math.Floor((xPx+p.xOffsetPx)/p.xFactor + 0.5))
}

// XFactor is the width in pixels of one label interval.
func (p *Projection) XFactor() float64 {
	return p.xFactor
}

// Copy returns a new projection with the given fields replaced.
func (p *Projection) Copy(o Overrides) *Projection {
	params := p.params
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&params.Begin, o.Begin)
	set(&params.End, o.End)
	set(&params.YMin, o.YMin)
	set(&params.YMax, o.YMax)
	set(&params.AvailableWidth, o.AvailableWidth)
	set(&params.AvailableHeight, o.AvailableHeight)
	set(&params.XPadding, o.XPadding)
	set(&params.YPadding, o.YPadding)
	return New(params)
}

// Center returns the center of the drawable area.
func (p *Projection) Center() (x, y float64) {
	return p.params.AvailableWidth / 2,
		p.params.AvailableHeight - p.effectiveHeight/2
}

// Size returns the drawable width and height.
func (p *Projection) Size() (width, height float64) {
	return p.params.AvailableWidth, p.effectiveHeight
}

// Params returns the parameters the projection was built from.
func (p *Projection) Params() Params {
	return p.params
}
