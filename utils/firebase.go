// utils/firebase.go
package utils

import (
	"context"
	"fmt"

	"meetmydesigners/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FirebaseInit initializes the Firebase App and returns its Messaging client.
// A nil client with nil error means push delivery is disabled.
func FirebaseInit(ctx context.Context) (*messaging.Client, error) {
	credentials := config.AppConfig.FirebaseCredentialsFile
	if credentials == "" {
		GetLogger().Warn("firebase: FIREBASE_CREDENTIALS_FILE not set, push notifications disabled")
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentials))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}
	return client, nil
}
