// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
	"github.com/taibuivan/lifequest/internal/platform/ctxutil"
	"github.com/taibuivan/lifequest/internal/platform/validate"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target interface{}) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBodyBytes)
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
RequiredPrincipal ensures the request is authenticated and returns the resolved account.

Returns:
  - *ctxutil.Principal: The authenticated account
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredPrincipal(request *http.Request) (*ctxutil.Principal, error) {
	principal := ctxutil.GetPrincipal(request.Context())
	if principal == nil {
		return nil, apperr.Unauthorized("Missing authorization header")
	}
	return principal, nil
}

// RequiredAccountID returns the ID of the currently authenticated account.
func RequiredAccountID(request *http.Request) (string, error) {
	principal, err := RequiredPrincipal(request)
	if err != nil {
		return "", err
	}
	return principal.AccountID, nil
}

// Client returns the caller's device and network descriptor.
// An explicit deviceInfo from the body overrides the User-Agent derived one.
func Client(request *http.Request, deviceInfo string) ctxutil.Client {
	client := ctxutil.GetClient(request.Context())
	if deviceInfo != "" {
		client.DeviceInfo = deviceInfo
	}
	return client
}
