package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"pocketlog/internal/models"
	"pocketlog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const maxImageBytes = 10 << 20

// UserHandler serves the user directory and follow graph.
type UserHandler struct {
	userService     *services.UserService
	spendingService *services.SpendingService
	validate        *validator.Validate
}

func NewUserHandler(userService *services.UserService, spendingService *services.SpendingService) *UserHandler {
	return &UserHandler{
		userService:     userService,
		spendingService: spendingService,
		validate:        validator.New(),
	}
}

// RegisterPublicRoutes registers the routes that need no bearer token.
func (h *UserHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/users/user-nickname-check", h.HandleNicknameCheck)
}

// RegisterRoutes registers the protected user and friend routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	users := router.Group("/users")
	users.Get("/me", h.HandleMe)
	users.Post("/onboarding", h.HandleOnboarding)
	users.Patch("/nickname", h.HandleUpdateNickname)
	users.Get("/profile", h.HandleGetProfileImage)
	users.Post("/profile", h.HandleUploadProfileImage)
	users.Delete("/profile", h.HandleDeleteProfileImage)
	users.Get("/search", h.HandleSearch)

	friends := router.Group("/friends")
	friends.Get("/spending", h.HandleFriendSpending)
	friends.Post("/:nickname/follow", h.HandleFollow)
	friends.Delete("/:nickname/follow", h.HandleUnfollow)
	friends.Get("/:nickname/is-following", h.HandleIsFollowing)
}

// UserResponse is the public view of a user.
type UserResponse struct {
	KakaoID         int64  `json:"kakaoId"`
	Nickname        string `json:"nickname"`
	UserNickname    string `json:"userNickname"`
	ProfileImageURL string `json:"profileImageUrl"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		KakaoID:         u.KakaoID,
		Nickname:        u.Nickname,
		UserNickname:    u.ChosenNickname(),
		ProfileImageURL: u.ProfileImageURL,
	}
}

// OnboardingRequest is the body of POST /users/onboarding.
type OnboardingRequest struct {
	UserNickname string `json:"userNickname" validate:"required,max=100"`
}

func (h *UserHandler) HandleMe(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	user, err := h.userService.GetByExternalID(me)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUserResponse(user))
}

func (h *UserHandler) HandleOnboarding(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	var req OnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return validationFailed(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	user, err := h.userService.CompleteOnboarding(me, req.UserNickname)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Onboarding completed",
		"user":    toUserResponse(user),
	})
}

func (h *UserHandler) HandleNicknameCheck(c *fiber.Ctx) error {
	nickname := c.Query("userNickname")
	if nickname == "" {
		return respondError(c, fmt.Errorf("%w: userNickname is required", services.ErrValidation))
	}
	available, err := h.userService.IsNicknameAvailable(nickname)
	if err != nil {
		return respondError(c, err)
	}
	message := "Nickname is available"
	if !available {
		message = "Nickname is already taken"
	}
	return c.JSON(fiber.Map{
		"available": available,
		"message":   message,
	})
}

func (h *UserHandler) HandleUpdateNickname(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	message, err := h.userService.UpdateNickname(me, c.Query("newNickname"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": message})
}

func (h *UserHandler) HandleGetProfileImage(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	url, err := h.userService.ProfileImage(me)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"profileImageUrl": url})
}

func (h *UserHandler) HandleUploadProfileImage(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	fileHeader, err := c.FormFile("profileImage")
	if err != nil {
		return respondError(c, fmt.Errorf("%w: multipart field profileImage is required", services.ErrValidation))
	}
	data, err := readUpload(fileHeader)
	if err != nil {
		return respondError(c, err)
	}

	url, err := h.userService.UploadProfileImage(me, fileHeader.Filename, data)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"profileImageUrl": url})
}

func (h *UserHandler) HandleDeleteProfileImage(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.userService.DeleteProfileImage(me); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile image deleted"})
}

func (h *UserHandler) HandleSearch(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return respondError(c, err)
	}
	users, err := h.userService.SearchByNickname(c.Query("nickname"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return c.JSON(out)
}

// friend resolves the :nickname path parameter.
func (h *UserHandler) friend(c *fiber.Ctx) (*models.User, error) {
	return h.userService.GetByNickname(c.Params("nickname"))
}

func (h *UserHandler) HandleFollow(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	friend, err := h.friend(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.userService.Follow(me, friend.KakaoID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("You are now following %s", friend.ChosenNickname())})
}

func (h *UserHandler) HandleUnfollow(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	friend, err := h.friend(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.userService.Unfollow(me, friend.KakaoID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("You unfollowed %s", friend.ChosenNickname())})
}

func (h *UserHandler) HandleIsFollowing(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	friend, err := h.friend(c)
	if err != nil {
		return respondError(c, err)
	}
	following, err := h.userService.IsFollowing(me, friend.KakaoID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"isFollowing": following})
}

func (h *UserHandler) HandleFriendSpending(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	page, err := h.spendingService.SummarizeForFollowedUsers(me, c.QueryInt("page", 0), c.QueryInt("size", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// readUpload reads a multipart file up to maxImageBytes.
func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxImageBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", services.ErrValidation, fh.Filename, maxImageBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImageBytes))
}
