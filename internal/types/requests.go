package types

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,max=150"`
}

// SetPasswordRequest is the body of POST /users/set_password.
type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,max=150"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

// RecipeIngredientInput is one {id, amount} entry of a recipe write.
type RecipeIngredientInput struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeWriteRequest is the body of recipe create and update. Pointer fields
// distinguish an absent key from an empty value; update requires the tags and
// ingredients keys to be present.
type RecipeWriteRequest struct {
	Ingredients *[]RecipeIngredientInput `json:"ingredients"`
	Tags        *[]uint                  `json:"tags"`
	Image       *string                  `json:"image"`
	Name        *string                  `json:"name"`
	Text        *string                  `json:"text"`
	CookingTime *int                     `json:"cooking_time"`

	// ImageData is set when the image arrives as a multipart file part.
	ImageData []byte `json:"-"`
	// ImageExt is the file extension of ImageData without the dot.
	ImageExt string `json:"-"`
}

// HasImage reports whether the request carries an image in either form.
func (r *RecipeWriteRequest) HasImage() bool {
	return len(r.ImageData) > 0 || (r.Image != nil && *r.Image != "")
}
