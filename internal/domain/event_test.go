package domain

import "testing"

func TestDecodeInboundEvent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want InboundEvent
	}{
		{
			name: "node selected",
			raw:  `{"type":"NODE_SELECTED","data":{"lat":40.71,"lon":-74.0}}`,
			want: NodeSelected{Lat: 40.71, Lon: -74.0},
		},
		{
			name: "zero coordinates are valid",
			raw:  `{"type":"NODE_SELECTED","data":{"lat":0,"lon":0}}`,
			want: NodeSelected{Lat: 0, Lon: 0},
		},
		{
			name: "extra fields ignored",
			raw:  `{"type":"NODE_SELECTED","data":{"lat":1,"lon":2,"zoom":12},"source":"folium"}`,
			want: NodeSelected{Lat: 1, Lon: 2},
		},
		{
			name: "other type",
			raw:  `{"type":"MAP_READY","data":{}}`,
			want: Unknown{Type: "MAP_READY"},
		},
		{
			name: "missing data",
			raw:  `{"type":"NODE_SELECTED"}`,
			want: Unknown{Type: "NODE_SELECTED"},
		},
		{
			name: "null data",
			raw:  `{"type":"NODE_SELECTED","data":null}`,
			want: Unknown{Type: "NODE_SELECTED"},
		},
		{
			name: "missing lat",
			raw:  `{"type":"NODE_SELECTED","data":{"lon":2}}`,
			want: Unknown{Type: "NODE_SELECTED"},
		},
		{
			name: "string coordinates",
			raw:  `{"type":"NODE_SELECTED","data":{"lat":"1","lon":"2"}}`,
			want: Unknown{Type: "NODE_SELECTED"},
		},
		{
			name: "out of range latitude",
			raw:  `{"type":"NODE_SELECTED","data":{"lat":91,"lon":2}}`,
			want: Unknown{Type: "NODE_SELECTED"},
		},
		{
			name: "not an object",
			raw:  `"NODE_SELECTED"`,
			want: Unknown{},
		},
		{
			name: "garbage",
			raw:  `{{{`,
			want: Unknown{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DecodeInboundEvent([]byte(tc.raw))
			if got != tc.want {
				t.Fatalf("DecodeInboundEvent(%s) = %#v, want %#v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestFilterByIDSubstringKeepsOrder(t *testing.T) {
	candidates := []Location{{ID: "142"}, {ID: "42"}, {ID: "423"}, {ID: "17"}}

	got := FilterByID(candidates, "42")

	want := []string{"142", "42", "423"}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("candidate %d = %q, want %q", i, got[i].ID, id)
		}
	}
}
