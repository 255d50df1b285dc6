package clubio

import (
	"context"
	"fmt"
	"net/url"
)

// Clubs lists every registered club.
func (c *Client) Clubs(ctx context.Context) Result[[]Club] {
	return request[[]Club](ctx, c, "/clubs/view_all_clubs/", get())
}

// ClubMembers lists the membership roster of one club.
func (c *Client) ClubMembers(ctx context.Context, clubID int64) Result[[]Member] {
	return request[[]Member](ctx, c, fmt.Sprintf("/membership/get_all_members/%d/", clubID), get())
}

// AddMember adds the person with the given email to the calling club.
func (c *Client) AddMember(ctx context.Context, email string) Result[Member] {
	opts := requestOptions{method: "POST"}
	opts.query = url.Values{"email": {email}}
	return request[Member](ctx, c, "/membership/add_member/", opts)
}

// RemoveMember removes the person with the given email from the club.
func (c *Client) RemoveMember(ctx context.Context, email string) Result[map[string]any] {
	opts := del()
	opts.query = url.Values{"email": {email}}
	return request[map[string]any](ctx, c, "/membership/remove_member/", opts)
}

// UploadMembersCSV bulk-imports members from a CSV file. The backend
// answers with a result file, so the payload is returned verbatim rather
// than decoded.
func (c *Client) UploadMembersCSV(ctx context.Context, filename string, file []byte) Result[[]byte] {
	body, contentType, err := multipartFile("file", filename, file, nil)
	if err != nil {
		return Fail[[]byte](failureMessage(err))
	}

	opts := requestOptions{method: "POST", body: body, contentType: contentType}
	return rawRequest(ctx, c, "/membership/upload_members_file/", opts)
}
