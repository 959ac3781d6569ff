package handlers

import (
	"log"

	"pocketlog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles the Kakao login handshake.
type AuthHandler struct {
	authService   *services.AuthService
	validate      *validator.Validate
	redirectLocal string
	redirectProd  string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, redirectLocal, redirectProd string) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		validate:      validator.New(),
		redirectLocal: redirectLocal,
		redirectProd:  redirectProd,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	kakaoRoutes := router.Group("/kakao")
	kakaoRoutes.Get("/login", h.HandleLoginURL)
	kakaoRoutes.Get("/login/local", h.HandleLoginURLLocal)
	kakaoRoutes.Get("/login/dev", h.HandleLoginURLDev)
	kakaoRoutes.Post("/callback", h.HandleCallback)
	kakaoRoutes.Get("/userinfo", h.HandleUserInfo)
	kakaoRoutes.Post("/login", h.HandleLogin)
}

// CallbackRequest carries the authorization code the frontend received from Kakao.
type CallbackRequest struct {
	Code        string `json:"code" validate:"required"`
	RedirectURI string `json:"redirectUri" validate:"required,url"`
}

// HandleLoginURL returns the Kakao login page URL for an arbitrary redirect_uri.
func (h *AuthHandler) HandleLoginURL(c *fiber.Ctx) error {
	return h.loginURL(c, c.Query("redirect_uri"))
}

func (h *AuthHandler) HandleLoginURLLocal(c *fiber.Ctx) error {
	return h.loginURL(c, h.redirectLocal)
}

func (h *AuthHandler) HandleLoginURLDev(c *fiber.Ctx) error {
	return h.loginURL(c, h.redirectProd)
}

func (h *AuthHandler) loginURL(c *fiber.Ctx, redirectURI string) error {
	loginURL, state, err := h.authService.LoginURL(redirectURI)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"loginUrl": loginURL,
		"state":    state,
	})
}

// HandleCallback exchanges the code and returns the provider token pair.
func (h *AuthHandler) HandleCallback(c *fiber.Ctx) error {
	var req CallbackRequest
	if err := h.bind(c, &req); err != nil {
		return validationFailed(c, err)
	}

	token, err := h.authService.ExchangeCode(c.UserContext(), req.Code, req.RedirectURI)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(token)
}

// HandleUserInfo upserts the user behind a provider access token and issues our bearer token.
func (h *AuthHandler) HandleUserInfo(c *fiber.Ctx) error {
	result, err := h.authService.LoginWithAccessToken(c.UserContext(), c.Query("accessToken"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(loginResponse(result))
}

// HandleLogin runs code exchange, profile fetch, upsert and token issuance in one call.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req CallbackRequest
	if err := h.bind(c, &req); err != nil {
		return validationFailed(c, err)
	}

	result, err := h.authService.Login(c.UserContext(), req.Code, req.RedirectURI)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(loginResponse(result))
}

// bind parses and validates the JSON body into req.
func (h *AuthHandler) bind(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return err
	}
	return h.validate.Struct(req)
}

func loginResponse(result *services.LoginResult) fiber.Map {
	status, message := "existing", "Existing user information was updated."
	if result.IsNewUser {
		status, message = "new", "A new user was created."
	}
	return fiber.Map{
		"status":    status,
		"message":   message,
		"userInfo":  result.User,
		"jwtToken":  result.Token,
		"expiresIn": result.ExpiresIn,
	}
}
