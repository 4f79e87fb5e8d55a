package controllers

import (
	"errors"

	"github.com/xinyucaoo/influenceBay-sub000/config"
	"github.com/xinyucaoo/influenceBay-sub000/models"
	"github.com/xinyucaoo/influenceBay-sub000/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserController 用户控制器
type UserController struct{}

// NewUserController 创建用户控制器实例
func NewUserController() *UserController {
	return &UserController{}
}

// UpdateProfileRequest 更新资料请求结构
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"max=100"`
	Avatar      string `json:"avatar" binding:"max=255"`
	Bio         string `json:"bio" binding:"max=2000"`
	Platform    string `json:"platform" binding:"max=50"`
	Followers   *int64 `json:"followers" binding:"omitempty,gte=0"`
	Website     string `json:"website" binding:"max=255"`
}

// GetUserProfile 获取用户公开资料
// @Summary 获取用户公开资料
// @Tags users
// @Produce json
// @Param id path string true "用户ID"
// @Success 200 {object} models.User
// @Router /api/users/{id} [get]
func (uc *UserController) GetUserProfile(c *gin.Context) {
	userID := c.Param("id")

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

// UpdateUserProfile 更新当前用户资料
// @Summary 更新当前用户资料
// @Tags users
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body UpdateProfileRequest true "资料"
// @Success 200 {object} models.User
// @Router /api/users/profile [put]
func (uc *UserController) UpdateUserProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != "" {
		updates["display_name"] = req.DisplayName
	}
	if req.Avatar != "" {
		updates["avatar"] = req.Avatar
	}
	if req.Bio != "" {
		updates["bio"] = req.Bio
	}
	if req.Platform != "" {
		updates["platform"] = req.Platform
	}
	if req.Followers != nil {
		updates["followers"] = *req.Followers
	}
	if req.Website != "" {
		updates["website"] = req.Website
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
			utils.InternalError(c, "Failed to update profile")
			return
		}
	}

	utils.Success(c, user)
}
