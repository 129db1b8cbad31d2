package models

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token and the user it belongs to.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"username"`
	Password string `json:"password" validate:"password"`
}

// RegisterResponse is the account created by POST /auth/register.
type RegisterResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ProfileUpdate is a partial update; nil fields are not sent.
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,max=100"`
	Age       *int    `json:"age,omitempty" validate:"omitempty,min=0,max=150"`
}

// Empty reports whether the update carries no fields.
func (p ProfileUpdate) Empty() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil && p.Age == nil
}

// PasswordChange is the body of PATCH /users/me/password.
type PasswordChange struct {
	CurrentPassword    string `json:"currentPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"password,nefield=CurrentPassword"`
	NewPasswordConfirm string `json:"newPasswordConfirm" validate:"eqfield=NewPassword"`
}

// RecipeCreate is the body of POST /recipes.
type RecipeCreate struct {
	Title       string      `json:"title" validate:"required,min=1,max=200"`
	Ingredients []string    `json:"ingredients,omitempty" validate:"dive,required"`
	Instruction string      `json:"instruction,omitempty"`
	Tags        []RecipeTag `json:"tags,omitempty" validate:"dive,recipetag"`
}

// RecipeUpdate is a partial update for PATCH /recipes/{id}; nil fields are not sent.
type RecipeUpdate struct {
	Title       *string      `json:"title,omitempty" validate:"omitnil,min=1,max=200"`
	Ingredients *[]string    `json:"ingredients,omitempty" validate:"omitempty,dive,required"`
	Instruction *string      `json:"instruction,omitempty"`
	Tags        *[]RecipeTag `json:"tags,omitempty" validate:"omitempty,dive,recipetag"`
}

// Empty reports whether the update carries no fields.
func (u RecipeUpdate) Empty() bool {
	return u.Title == nil && u.Ingredients == nil && u.Instruction == nil && u.Tags == nil
}

// ErrorBody is the error payload returned by the API server.
type ErrorBody struct {
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Path      string `json:"path,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}
