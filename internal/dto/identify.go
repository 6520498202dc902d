package dto

// IdentifyRequest carries the product photo, either inline or by reference.
type IdentifyRequest struct {
	ImageBase64 string `json:"image_base64,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// IdentifyResponse is the identification service's best guess for the
// product in the photo. Callers build their search query as brand + " " + name.
type IdentifyResponse struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}
