package handler

import (
	"net/http"

	"github.com/devfolio-io/devfolio/internal/infra/authprovider"
	"github.com/devfolio-io/devfolio/internal/modules/serializer"
	"github.com/devfolio-io/devfolio/internal/modules/service"
	"github.com/devfolio-io/devfolio/internal/pkg/validation"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{svc: s}
}

// relay copies the provider's Set-Cookie values onto the response.
func relay(c *gin.Context, res *authprovider.Result) {
	if res == nil {
		return
	}
	for _, v := range res.Cookies {
		c.Writer.Header().Add("Set-Cookie", v)
	}
}

// SignUpEmail godoc
//
//	@Summary		Sign up
//	@Description	Create an account. The form is validated before the auth provider is contacted.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	validation.SignUpInput	true	"Sign up form"
//	@Success		200	{object}	serializer.Response{data=authprovider.Result}
//	@Failure		400	{object}	serializer.Response
//	@Router			/auth/sign-up/email [post]
func (h *AuthHandler) SignUpEmail(c *gin.Context) {
	req := validation.SignUpInput{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	res, err := h.svc.SignUp(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	relay(c, res)
	c.JSON(http.StatusOK, serializer.OK(res))
}

// SignInUsername godoc
//
//	@Summary		Sign in with username
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	validation.SignInUsernameInput	true	"Credentials"
//	@Success		200	{object}	serializer.Response{data=authprovider.Result}
//	@Failure		400	{object}	serializer.Response
//	@Failure		401	{object}	serializer.Response
//	@Router			/auth/sign-in/username [post]
func (h *AuthHandler) SignInUsername(c *gin.Context) {
	req := validation.SignInUsernameInput{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	res, err := h.svc.SignInUsername(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	relay(c, res)
	c.JSON(http.StatusOK, serializer.OK(res))
}

// SignInEmail godoc
//
//	@Summary		Sign in with email
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	validation.SignInEmailInput	true	"Credentials"
//	@Success		200	{object}	serializer.Response{data=authprovider.Result}
//	@Failure		400	{object}	serializer.Response
//	@Failure		401	{object}	serializer.Response
//	@Router			/auth/sign-in/email [post]
func (h *AuthHandler) SignInEmail(c *gin.Context) {
	req := validation.SignInEmailInput{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	res, err := h.svc.SignInEmail(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	relay(c, res)
	c.JSON(http.StatusOK, serializer.OK(res))
}

// SignOut godoc
//
//	@Summary	Sign out
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	serializer.Response
//	@Router		/auth/sign-out [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	res, err := h.svc.SignOut(c.Request.Context(), c.GetHeader("Cookie"))
	if err != nil {
		writeError(c, err)
		return
	}
	relay(c, res)
	c.JSON(http.StatusOK, serializer.OK(nil))
}

// GetSession godoc
//
//	@Summary	Current session
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	serializer.Response{data=authprovider.Session}
//	@Failure	401	{object}	serializer.Response
//	@Router		/auth/session [get]
func (h *AuthHandler) GetSession(c *gin.Context) {
	s, err := h.svc.GetSession(c.Request.Context(), c.GetHeader("Cookie"))
	if err != nil {
		writeError(c, err)
		return
	}
	if s == nil {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	c.JSON(http.StatusOK, serializer.OK(s))
}
