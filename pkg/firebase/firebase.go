package firebase

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and auth client. It verifies ID tokens and
// serves as the user directory consulted when an account is first seen.
type App struct {
	FirebaseApp *firebase.App
	AuthClient  *auth.Client
}

// InitFirebase initializes the Firebase application and authentication client
func InitFirebase(ctx context.Context, credentialsPath string, log *zap.Logger) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}

	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	firebaseApp, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	log.Info("Firebase app and auth client initialized")
	return &App{FirebaseApp: firebaseApp, AuthClient: authClient}, nil
}

// VerifyToken checks a Firebase ID token and returns the account's uid.
func (a *App) VerifyToken(ctx context.Context, idToken string) (string, error) {
	token, err := a.AuthClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return token.UID, nil
}

// LookupUser fetches the provider-side profile of uid.
func (a *App) LookupUser(ctx context.Context, uid string) (*models.Identity, error) {
	record, err := a.AuthClient.GetUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("firebase get user %s: %w", uid, err)
	}
	return &models.Identity{
		ID:     record.UID,
		Name:   record.DisplayName,
		Email:  record.Email,
		Avatar: record.PhotoURL,
	}, nil
}
