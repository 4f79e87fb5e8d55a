package utils

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// 初始化验证器
func init() {
	// 注册自定义验证规则，gin的binding引擎也要注册一份
	// 否则controller里的 binding:"password" 等tag不生效
	validate.RegisterValidation("password", validatePassword)
	validate.RegisterValidation("username", validateUsername)

	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		engine.RegisterValidation("password", validatePassword)
		engine.RegisterValidation("username", validateUsername)
	}
}

// Validator 验证器结构
type Validator struct {
	validator *validator.Validate
}

// NewValidator 创建新的验证器实例
func NewValidator() *Validator {
	return &Validator{
		validator: validate,
	}
}

// Validate 验证结构体
func (v *Validator) Validate(obj interface{}) error {
	if err := v.validator.Struct(obj); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// formatValidationErrors 格式化验证错误信息
func formatValidationErrors(errs []validator.FieldError) error {
	errorMap := make(map[string]string)
	for _, err := range errs {
		errorMap[err.Field()] = fmt.Sprintf("字段 %s 未通过 %s 校验", err.Field(), err.Tag())
	}
	return &ValidationError{Errors: errorMap}
}

// ValidationError 验证错误结构
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("Validation failed: %v", ve.Errors)
}

// validatePassword 密码必须至少8位，且包含大小写字母和数字
func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// validateUsername 用户名只能包含字母、数字和下划线，且以字母开头
func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}
