package controllers

import (
	"errors"

	"github.com/xinyucaoo/influenceBay-sub000/config"
	"github.com/xinyucaoo/influenceBay-sub000/models"
	"github.com/xinyucaoo/influenceBay-sub000/services"
	"github.com/xinyucaoo/influenceBay-sub000/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthController 认证控制器
type AuthController struct {
	authService *services.AuthService
}

// NewAuthController 创建认证控制器实例
func NewAuthController() *AuthController {
	return &AuthController{
		authService: services.NewAuthService(),
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50,username"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,max=72,password"`
	Role        string `json:"role" binding:"required,oneof=brand creator"`
	DisplayName string `json:"display_name" binding:"max=100"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新token请求
type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 注册品牌方或创作者账号
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 201 {object} models.User
// @Router /api/auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	user, err := ac.authService.Register(services.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, user)
}

// Login 用户登录
// @Summary 用户登录
// @Description 邮箱+密码登录，返回JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} utils.Response
// @Router /api/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	result, err := ac.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"user":  result.User,
		"token": result.Token,
	})
}

// RefreshToken 刷新token
// @Summary 刷新token
// @Description 刷新即将过期的JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "原token"
// @Success 200 {object} utils.Response
// @Router /api/auth/refresh [post]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	token, err := ac.authService.RefreshToken(req.Token)
	if err != nil {
		utils.Unauthorized(c, err.Error())
		return
	}

	utils.Success(c, gin.H{"token": token})
}

// Me 获取当前登录用户
// @Summary 获取当前登录用户
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} models.User
// @Router /api/auth/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
			return
		}
		utils.InternalError(c, "")
		return
	}

	utils.Success(c, user)
}
