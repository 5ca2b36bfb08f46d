package models

// Coordinate is a WGS84 point in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationPermissions is what the device last reported about its location grants.
type LocationPermissions struct {
	Foreground bool `json:"foreground"`
	Background bool `json:"background"`
}
