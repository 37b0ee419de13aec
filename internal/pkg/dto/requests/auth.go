package requests

type Signup struct {
	Email          string `json:"email" validate:"required,email"`
	FullName       string `json:"full_name" validate:"required,min=2,max=100"`
	Password       string `json:"password" validate:"required,password"`
	RetypePassword string `json:"retype_password" validate:"required,eqfield=Password"`
}

type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
