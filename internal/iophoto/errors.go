package iophoto

import (
	"errors"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
)

// EmptyPhotoError is returned when no image data was supplied.
func EmptyPhotoError() error {
	return &gn.Error{
		Code: errcode.ValidationError,
		Msg:  "Photo is empty",
		Err:  errors.New("photo has no data"),
	}
}
