package domain

// TimePeriod is a selectable traffic period offered by the backend settings.
type TimePeriod struct {
	Hour      int
	DayOfWeek int
	Label     string
}

// MapStyle is the backend map_type used when rendering a route.
type MapStyle string

const DefaultMapStyle MapStyle = "enhanced"

// MapStyleOption is one entry of the backend's map_types list.
type MapStyleOption struct {
	Value MapStyle
	Label string
}

// Settings are the options the backend offers for route generation.
type Settings struct {
	TimePeriods []TimePeriod
	MapStyles   []MapStyleOption
}

// Segment is one leg of an optimized route.
type Segment struct {
	From           string
	To             string
	TimeMinutes    float64
	CumulativeTime float64
}

// RouteResult is the output of the optimize phase. It is replaced wholesale
// by each new optimize call and never modified after receipt.
type RouteResult struct {
	// Route is the backend's opaque route payload, passed back verbatim to
	// the render call.
	Route            []byte
	Nodes            []string
	Segments         []Segment
	TotalTimeMinutes float64
	TotalDistanceKm  float64
	Hour             int
	IsWeekend        bool
}

// OptimizeRequest is the body of a route optimize call.
type OptimizeRequest struct {
	Hour      int
	DayOfWeek int
	// DepotID is omitted from the wire request when empty.
	DepotID string
	StopIDs []string
}

// RouteRenderRequest is the body of a route render call.
type RouteRenderRequest struct {
	Route     []byte
	Hour      int
	DayOfWeek int
	Style     MapStyle
}
