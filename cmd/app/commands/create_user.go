package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	userDomain "github.com/allisson/sessions/internal/user/domain"
	userUsecase "github.com/allisson/sessions/internal/user/usecase"
)

// RunCreateUser registers a new account. When password is empty it is read
// from io.Reader, so it does not have to appear in shell history.
func RunCreateUser(
	ctx context.Context,
	userUseCase userUsecase.UseCase,
	logger *slog.Logger,
	name, email, password string,
	format string,
	io IOTuple,
) error {
	if password == "" {
		var err error
		password, err = promptForPassword(io)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	user, err := userUseCase.RegisterUser(ctx, userUsecase.RegisterUserInput{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if format == "json" {
		if err := writeJSON(io.Writer, newUserResult(user)); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintln(io.Writer, "User created successfully!")
		_, _ = fmt.Fprintf(io.Writer, "User ID: %s\n", user.ID)
		_, _ = fmt.Fprintf(io.Writer, "Email:   %s\n", user.Email)
	}

	logger.Info("user created", slog.String("user_id", user.ID.String()))
	return nil
}

func promptForPassword(io IOTuple) (string, error) {
	_, _ = fmt.Fprint(io.Writer, "Enter password: ")

	reader := bufio.NewReader(io.Reader)
	password, err := reader.ReadString('\n')
	if err != nil && password == "" {
		return "", err
	}

	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

// userResult is the JSON output of the user commands.
type userResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func newUserResult(user *userDomain.User) userResult {
	return userResult{
		ID:       user.ID.String(),
		Name:     user.Name,
		Email:    user.Email,
		IsActive: user.IsActive,
	}
}
