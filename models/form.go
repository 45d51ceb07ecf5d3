package models

// Registration form field names, matching the multipart part names.
const (
	FieldNumber    = "soBan"
	FieldSeatCount = "soChoNgoi"
	FieldZone      = "soKhuVuc"
	FieldImage     = "image"
)
