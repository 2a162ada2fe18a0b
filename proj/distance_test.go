package proj

import "testing"

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b GeoPoint
		want float64
		tol  float64
	}{
		{
			name: "Same point",
			a:    GeoPoint{Lon: 12.5, Lat: 41.9},
			b:    GeoPoint{Lon: 12.5, Lat: 41.9},
			want: 0,
			tol:  1e-9,
		},
		{
			name: "One degree of longitude on the equator",
			a:    GeoPoint{Lon: 0, Lat: 0},
			b:    GeoPoint{Lon: 1, Lat: 0},
			want: 111319.49,
			tol:  0.5,
		},
		{
			name: "One degree of latitude from the equator",
			a:    GeoPoint{Lon: 0, Lat: 0},
			b:    GeoPoint{Lon: 0, Lat: 1},
			want: 110580.0,
			tol:  50,
		},
		{
			name: "Longitude shrinks with latitude",
			a:    GeoPoint{Lon: 0, Lat: 60},
			b:    GeoPoint{Lon: 1, Lat: 60},
			want: 55800.0,
			tol:  100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if !nearly(got, tt.want, tt.tol) {
				t.Errorf("got %f; want %f ± %f", got, tt.want, tt.tol)
			}
			if back := Distance(tt.b, tt.a); !nearly(back, got, 1e-9) {
				t.Errorf("distance is not symmetric: %f vs %f", got, back)
			}
		})
	}
}

func TestScaleBar(t *testing.T) {
	tests := []struct {
		name      string
		zoom      int
		maxWidth  int
		wantWidth int
		wantLabel string
	}{
		{
			name:      "Whole world at zoom 0",
			zoom:      0,
			maxWidth:  100,
			wantWidth: 64,
			wantLabel: "10000 km",
		},
		{
			name:      "City scale at zoom 12",
			zoom:      12,
			maxWidth:  130,
			wantWidth: 52,
			wantLabel: "2 km",
		},
		{
			name:      "Street scale at max zoom",
			zoom:      MaxZoom,
			maxWidth:  130,
			wantWidth: 67,
			wantLabel: "20 m",
		},
		{
			name:      "Narrowest candidate even when it does not fit",
			zoom:      MaxZoom,
			maxWidth:  10,
			wantWidth: 17,
			wantLabel: "5 m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotWidth, gotLabel := ScaleBar(tt.zoom, tt.maxWidth)
			if gotWidth != tt.wantWidth || gotLabel != tt.wantLabel {
				t.Errorf("got (%d, %q); want (%d, %q)",
					gotWidth, gotLabel, tt.wantWidth, tt.wantLabel)
			}
		})
	}
}
