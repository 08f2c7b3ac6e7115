package dto

type LocationResponse struct {
	ID         string   `json:"id"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// SelectedNode is a committed id, with coordinates when they are known.
type SelectedNode struct {
	ID  string   `json:"id"`
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
}

type SelectionResponse struct {
	Mode  string         `json:"mode"`
	Depot *SelectedNode  `json:"depot"`
	Stops []SelectedNode `json:"stops"`
}

type NoticeResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type TimePeriodResponse struct {
	Hour      int    `json:"hour"`
	DayOfWeek int    `json:"day_of_week"`
	Label     string `json:"label"`
}

type MapStyleResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type SegmentResponse struct {
	From           string  `json:"from_node"`
	To             string  `json:"to_node"`
	TimeMinutes    float64 `json:"time_minutes"`
	CumulativeTime float64 `json:"cumulative_time"`
}

type RouteResultResponse struct {
	Nodes            []string          `json:"nodes"`
	Segments         []SegmentResponse `json:"segments"`
	TotalTimeMinutes float64           `json:"total_time_minutes"`
	TotalDistanceKm  float64           `json:"total_distance_km"`
	Hour             int               `json:"hour"`
	IsWeekend        bool              `json:"is_weekend"`
}

type RouteResponse struct {
	State      string               `json:"state"`
	Generation uint64               `json:"generation"`
	Result     *RouteResultResponse `json:"result"`
	MapURL     string               `json:"map_url,omitempty"`
	Error      *NoticeResponse      `json:"error,omitempty"`
}

type StateResponse struct {
	Selection       SelectionResponse    `json:"selection"`
	Results         []LocationResponse   `json:"results"`
	Notice          *NoticeResponse      `json:"notice"`
	TimePeriods     []TimePeriodResponse `json:"time_periods"`
	MapStyles       []MapStyleResponse   `json:"map_types"`
	TimePeriod      *TimePeriodResponse  `json:"time_period"`
	MapStyle        string               `json:"map_type"`
	SelectionMapURL string               `json:"selection_map_url,omitempty"`
	Route           RouteResponse        `json:"route"`
}

type EventResponse struct {
	Handled bool          `json:"handled"`
	State   StateResponse `json:"state"`
}
