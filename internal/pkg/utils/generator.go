package utils

import (
	"fmt"

	"carealert-service/internal/pkg/constvars"

	"github.com/google/uuid"
)

func GenerateRequestID() string {
	return fmt.Sprintf("%s%s", constvars.REQUEST_ID_PREFIX, uuid.New().String())
}

func GenerateSessionID() string {
	return uuid.New().String()
}
