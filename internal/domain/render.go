package domain

import "slices"

// RenderRequest asks for a map showing the selected depot and stops. It is a
// projection of a Selection snapshot plus time/style parameters, built fresh
// for every render call.
type RenderRequest struct {
	Stops []string
	Depot string
	// Period is nil when no time period has been chosen yet.
	Period *TimePeriod
	Style  MapStyle
}

func NewRenderRequest(sel Selection, period *TimePeriod, style MapStyle) RenderRequest {
	req := RenderRequest{
		Stops: slices.Clone(sel.Stops),
		Depot: sel.Depot,
		Style: style,
	}
	if req.Stops == nil {
		req.Stops = []string{}
	}
	if period != nil {
		p := *period
		req.Period = &p
	}
	return req
}

// Document is a rendered map document returned by the backend.
type Document struct {
	ContentType string
	Body        []byte
}

const DefaultDocumentContentType = "text/html; charset=utf-8"
