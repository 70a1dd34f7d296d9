package user

type CreateUserRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	FullName   string `json:"fullName" binding:"required"`
	Department string `json:"department"`
	Role       string `json:"role" binding:"omitempty,oneof=EMPLOYEE HR ADMIN"`
}

// UpdateProfileRequest has no username field: usernames never change.
type UpdateProfileRequest struct {
	FullName   *string `json:"fullName" binding:"omitempty,min=1"`
	Department *string `json:"department"`
	Email      *string `json:"email" binding:"omitempty,email"`
}

type UserResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	Department string `json:"department"`
	Role       string `json:"role"`
	CreatedAt  string `json:"createdAt"`
}

func mapToResponse(u User) UserResponse {
	return UserResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Department: u.Department,
		Role:       u.Role,
		CreatedAt:  u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func mapToListResponse(users []User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp
}
