package models

// User is the authenticated user's profile.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	DOB     string `json:"dob,omitempty"`
	Gender  string `json:"gender,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Avatar  string `json:"avatar,omitempty"`
}

// ProfileUpdate carries the profile fields to change. Nil fields are left alone.
type ProfileUpdate struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone   *string `json:"phone,omitempty"`
	DOB     *string `json:"dob,omitempty" validate:"omitempty,iso_day"`
	Gender  *string `json:"gender,omitempty"`
	Address *string `json:"address,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	Pincode *string `json:"pincode,omitempty"`
}

// ApplyTo merges the non-nil fields into u.
func (p ProfileUpdate) ApplyTo(u *User) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Name, p.Name)
	set(&u.Phone, p.Phone)
	set(&u.DOB, p.DOB)
	set(&u.Gender, p.Gender)
	set(&u.Address, p.Address)
	set(&u.City, p.City)
	set(&u.State, p.State)
	set(&u.Pincode, p.Pincode)
}

// PasswordChange is the payload for changing the password.
type PasswordChange struct {
	CurrentPassword   string `json:"current_password" validate:"required"`
	NewPassword       string `json:"new_password" validate:"required,min=6"`
	PlainTextPassword string `json:"plain_text_password,omitempty"`
}

// LoginRequest is the payload for authenticating with email and password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest is the payload for creating a user.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Token is what the budget service returns from login and signup.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserName    string `json:"user_name"`
}
