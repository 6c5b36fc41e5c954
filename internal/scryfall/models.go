package scryfall

import "strings"

// Card is the subset of a Scryfall card object this application persists.
// The API returns a far larger object; we only decode what we keep.
type Card struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	ManaCost   string     `json:"mana_cost,omitempty"`
	TypeLine   string     `json:"type_line,omitempty"`
	OracleText string     `json:"oracle_text,omitempty"`
	Colors     []string   `json:"colors,omitempty"`
	ImageURIs  *ImageURIs `json:"image_uris,omitempty"`
}

// ImageURIs contains URLs for card images in various sizes.
type ImageURIs struct {
	Small  string `json:"small"`
	Normal string `json:"normal"`
	Large  string `json:"large"`
	PNG    string `json:"png"`
}

// ImageURL returns the normal-size image URL, or "" for cards without images.
func (c *Card) ImageURL() string {
	if c.ImageURIs == nil {
		return ""
	}
	return c.ImageURIs.Normal
}

// ColorString flattens the color array into the comma-separated form stored
// locally, e.g. ["W","U"] → "W,U".
func (c *Card) ColorString() string {
	return strings.Join(c.Colors, ",")
}
