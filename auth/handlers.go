package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gilbertoneto04/betmanagerpro/common"
	"github.com/gilbertoneto04/betmanagerpro/schema"
	"github.com/labstack/echo/v4"
)

func (app *authSvc) registerUser(c echo.Context) error {

	// Everybody can self-register; elevated roles are assigned later by an admin
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		app.logger.Error(err)
		return c.JSON(http.StatusInternalServerError, nil)
	}

	var u User
	err = json.Unmarshal(body, &u)
	if err != nil {
		app.logger.Error(err)
		return c.JSON(http.StatusInternalServerError, nil)
	}

	if u.Login == "" || u.Password == "" || u.Name == "" || u.Email == "" {
		return c.JSON(http.StatusBadRequest,
			common.FromKeysAndValues("error", "must provide name, login, email and password"))
	}

	if u.RoleID == 0 {
		u.RoleID = schema.RoleUser
	}

	err = u.calculatePasswordHash()
	if err != nil {
		app.logger.Error(err)
		return c.JSON(http.StatusInternalServerError, nil)
	}

	result := app.userDb.Create(&u)
	if result.RowsAffected == 1 {
		// Creating could fail when login or email is not unique (database constraint)
		var userFromDb User
		result = app.userDb.First(&userFromDb, "login = ?", u.Login)
		if result.RowsAffected == 1 {
			go app.notifyAsync("UserCreated", userFromDb)
			return c.JSON(http.StatusOK, userFromDb)
		}
	}

	return c.JSON(http.StatusInternalServerError,
		common.FromKeysAndValues("error", "failed to create user"))
}

func (app *authSvc) verify(c echo.Context) error {
	tokenInfo, err := app.oauthServer.ValidationBearerToken(c.Request())
	if err != nil {
		app.logger.Error(err)
		return c.String(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, Verification{PublicId: tokenInfo.GetUserID()})
}

func (app *authSvc) token(c echo.Context) error {
	err := app.oauthServer.HandleTokenRequest(c.Response().Writer, c.Request())
	if err != nil {
		app.logger.Error(err)
	}
	return err
}

// checkPassword resolves the identifier to a user and verifies the secret.
// The identifier may be an email or a plain username; usernames are looked
// up before the credential check.
func (app *authSvc) checkPassword(ctx context.Context, clientID, username, password string) (userID string, err error) {
	var userFromDb User
	var result = app.userDb.First(&userFromDb, lookupColumn(username)+" = ?", username)
	if result.RowsAffected == 1 {
		if userFromDb.checkPassword(password) {
			userID = userFromDb.PublicId
		} else {
			err = errors.New("bad password")
		}
	} else {
		err = errors.New("user not found")
	}
	return
}

// lookupColumn picks the credential lookup column for an identifier
func lookupColumn(identifier string) string {
	if strings.Contains(identifier, "@") {
		return "email"
	}
	return "login"
}
