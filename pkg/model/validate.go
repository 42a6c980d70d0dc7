package model

import "github.com/go-playground/validator/v10"

// validate 包级结构体校验器
var validate = validator.New(validator.WithRequiredStructEnabled())
