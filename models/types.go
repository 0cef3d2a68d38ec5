// Package models contains the JSON bodies of the HTTP API
package models

// IconResponse is returned when a conversion fails
type IconResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Size    int    `json:"size,omitempty"`
}

// SizesResponse lists the sizes a client can offer
type SizesResponse struct {
	Default   []int    `json:"default"`
	Available []int    `json:"available"`
	Filters   []string `json:"filters"`
}

// FrameInfo describes one directory entry of an icon
type FrameInfo struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	BitsPerPixel int    `json:"bits_per_pixel"`
	Length       uint32 `json:"length"`
	Offset       uint32 `json:"offset"`
	Format       string `json:"format"`
}

// InspectResponse is the parsed directory of an uploaded icon
type InspectResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Count   int         `json:"count"`
	Bytes   int         `json:"bytes"`
	Frames  []FrameInfo `json:"frames"`
}
