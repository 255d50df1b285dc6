package clubio

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

// defaultPhoneRegion is used when a phone number has no country prefix.
const defaultPhoneRegion = "US"

// Login exchanges credentials for a bearer token. The backend expects form
// fields on this endpoint only; everything else speaks JSON. On success the
// token is persisted to the TokenStore before Login returns, so a follow-up
// request can already attach it. On failure the stored token is untouched.
func (c *Client) Login(ctx context.Context, email, password string) Result[LoginResponse] {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	res := request[LoginResponse](ctx, c, "/auth/login/", postForm(form))
	if !res.OK() {
		return res
	}

	if res.Data.AccessToken == "" {
		return Fail[LoginResponse]("login response missing access token")
	}

	if err := c.tokens.Set(res.Data.AccessToken); err != nil {
		c.logger.Error("unable to persist access token", "error", err)
		return Fail[LoginResponse](failureMessage(err))
	}

	return res
}

// CurrentUser resolves the identity behind the held token.
func (c *Client) CurrentUser(ctx context.Context) Result[User] {
	res := request[User](ctx, c, "/auth/current_user/", get())
	if !res.OK() {
		return res
	}

	if err := res.Data.Validate(); err != nil {
		c.logger.Error("backend returned inconsistent identity", "error", err)
		return Fail[User](err.Error())
	}

	return res
}

// AccountPayload is the shared account portion of a registration request
type AccountPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (p AccountPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(
			&p.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&p.Password,
			validation.Required,
			validation.Length(8, 100),
		),
	)
}

// PersonPayload is the person profile portion of a registration request
type PersonPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Validate will run validation rules
func (p PersonPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Phone, validation.By(ValidatePhoneNumber(defaultPhoneRegion))),
	)
}

// ClubPayload is the club profile portion of a registration request
type ClubPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate will run validation rules
func (p ClubPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Description, validation.Length(0, 2000)),
	)
}

// RegisterPersonRequest is the two-part body the registration endpoint
// expects: account fields plus the person profile.
type RegisterPersonRequest struct {
	User   AccountPayload `json:"user"`
	Person PersonPayload  `json:"person"`
}

func (r RegisterPersonRequest) Validate() error {
	if err := r.User.Validate(); err != nil {
		return err
	}
	return r.Person.Validate()
}

// RegisterClubRequest is the account plus club profile body.
type RegisterClubRequest struct {
	User AccountPayload `json:"user"`
	Club ClubPayload    `json:"club"`
}

func (r RegisterClubRequest) Validate() error {
	if err := r.User.Validate(); err != nil {
		return err
	}
	return r.Club.Validate()
}

// RegisterPerson creates a person account. Validation failures surface
// through the Result channel like any other error; no wire call is made.
func (c *Client) RegisterPerson(ctx context.Context, req RegisterPersonRequest) Result[User] {
	if err := req.Validate(); err != nil {
		return Fail[User](err.Error())
	}

	opts, err := postJSON(req)
	if err != nil {
		return Fail[User](failureMessage(err))
	}

	return request[User](ctx, c, "/auth/register/person/", opts)
}

// RegisterClub creates a club account.
func (c *Client) RegisterClub(ctx context.Context, req RegisterClubRequest) Result[User] {
	if err := req.Validate(); err != nil {
		return Fail[User](err.Error())
	}

	opts, err := postJSON(req)
	if err != nil {
		return Fail[User](failureMessage(err))
	}

	return request[User](ctx, c, "/auth/register/club/", opts)
}

// UserProfile fetches the caller's own profile record.
func (c *Client) UserProfile(ctx context.Context) Result[User] {
	return request[User](ctx, c, "/users/my_profile/", get())
}

// UpdateProfile edits the person profile with the given ID.
func (c *Client) UpdateProfile(ctx context.Context, personID int64, payload PersonPayload) Result[PersonProfile] {
	if err := payload.Validate(); err != nil {
		return Fail[PersonProfile](err.Error())
	}

	opts, err := putJSON(payload)
	if err != nil {
		return Fail[PersonProfile](failureMessage(err))
	}

	return request[PersonProfile](ctx, c, fmt.Sprintf("/users/edit_person/%d/", personID), opts)
}

// ValidatePhoneNumber builds an ozzo rule that accepts empty values and
// otherwise requires a number valid for the given region.
func ValidatePhoneNumber(region string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}

		num, err := phonenumbers.Parse(s, region)
		if err != nil {
			return errors.New("must be a valid phone number")
		}

		if !phonenumbers.IsValidNumber(num) {
			return errors.New("must be a valid phone number")
		}

		return nil
	}
}
