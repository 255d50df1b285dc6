package clubio

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
)

// ImageKind selects the owner slot for a generic image upload
type ImageKind = string

const (
	ImageKindUser  ImageKind = "user"
	ImageKindClub  ImageKind = "club"
	ImageKindEvent ImageKind = "event"
)

// UploadImage stores an image in the given owner slot.
func (c *Client) UploadImage(ctx context.Context, kind ImageKind, filename string, file []byte) Result[Image] {
	body, contentType, err := multipartFile("file", filename, file, map[string]string{"type": kind})
	if err != nil {
		return Fail[Image](failureMessage(err))
	}

	opts := requestOptions{method: "POST", body: body, contentType: contentType}
	return request[Image](ctx, c, "/images/upload/", opts)
}

// AddProfileImage attaches an image to the caller's own profile.
func (c *Client) AddProfileImage(ctx context.Context, filename string, file []byte) Result[Image] {
	body, contentType, err := multipartFile("image", filename, file, nil)
	if err != nil {
		return Fail[Image](failureMessage(err))
	}

	opts := requestOptions{method: "POST", body: body, contentType: contentType}
	return request[Image](ctx, c, "/images/add_profile_image/", opts)
}

// DeleteProfileImage detaches the caller's profile image.
func (c *Client) DeleteProfileImage(ctx context.Context) Result[map[string]any] {
	return request[map[string]any](ctx, c, "/images/delete_profile_image/", del())
}

// AttachEventImage attaches an image to an event.
func (c *Client) AttachEventImage(ctx context.Context, eventID int64, filename string, file []byte) Result[Image] {
	body, contentType, err := multipartFile("image", filename, file, nil)
	if err != nil {
		return Fail[Image](failureMessage(err))
	}

	opts := requestOptions{method: "POST", body: body, contentType: contentType}
	return request[Image](ctx, c, fmt.Sprintf("/images/attach_image_to_event/%d/", eventID), opts)
}

// DeleteEventImage detaches the image from an event.
func (c *Client) DeleteEventImage(ctx context.Context, eventID int64) Result[map[string]any] {
	return request[map[string]any](ctx, c, fmt.Sprintf("/images/delete_image_from_event/%d/", eventID), del())
}

// multipartFile encodes a single file plus optional scalar fields and
// returns the body with its boundary-bearing content type.
func multipartFile(fieldName, filename string, file []byte, fields map[string]string) ([]byte, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for key, val := range fields {
		if err := writer.WriteField(key, val); err != nil {
			return nil, "", err
		}
	}

	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		return nil, "", err
	}

	if _, err := part.Write(file); err != nil {
		return nil, "", err
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}
