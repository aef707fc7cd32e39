package user

// UpdateProfileDTO carries a partial update; nil fields keep their stored value.
type UpdateProfileDTO struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"firstname,omitempty"`
	LastName  *string `json:"lastname,omitempty"`
}

func (d UpdateProfileDTO) Empty() bool {
	return d.Email == nil && d.FirstName == nil && d.LastName == nil
}

// ApplyTo merges the update into u.
func (d UpdateProfileDTO) ApplyTo(u *User) {
	if d.Email != nil {
		u.Email = *d.Email
	}
	if d.FirstName != nil {
		u.FirstName = *d.FirstName
	}
	if d.LastName != nil {
		u.LastName = *d.LastName
	}
}
