package utils

import "errors"

var (
	// ErrImageTooSmall is returned by Admit for images below the size floor
	ErrImageTooSmall = errors.New("image below minimum size")
	// ErrImageTooLarge is returned when an image exceeds the byte or pixel cap
	ErrImageTooLarge = errors.New("image too large")
	// ErrTooManyRedirects is returned when a fetch exceeds the redirect limit
	ErrTooManyRedirects = errors.New("too many redirects")
)
