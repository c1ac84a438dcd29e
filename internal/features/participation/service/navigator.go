package service

import (
	"context"
	"net/url"
	"strings"

	"giveaway-offers-backend/internal/common/validation"

	"github.com/rs/zerolog"
)

// Navigator performs the best-effort "open the offer" side effect after a
// participation has been stored. Its error is logged and otherwise ignored.
type Navigator interface {
	Open(ctx context.Context, offerURL string) error
}

type NavigatorFunc func(ctx context.Context, offerURL string) error

func (f NavigatorFunc) Open(ctx context.Context, offerURL string) error {
	return f(ctx, offerURL)
}

// LoggingNavigator is used by the HTTP backend, where the browser opens the
// redirect URL returned in the submit response.
type LoggingNavigator struct {
	Logger zerolog.Logger
}

func (n LoggingNavigator) Open(_ context.Context, offerURL string) error {
	n.Logger.Debug().Str("offer_url", offerURL).Msg("Offer redirect issued")
	return nil
}

// BuildOfferURL puts the token into the offer URL under param. An existing
// value for param is replaced in place; otherwise the pair is appended. The
// order of the other query parameters is preserved.
func BuildOfferURL(rawURL, param, token string) (string, error) {
	u, err := validation.ParseOfferURL(rawURL)
	if err != nil {
		return "", err
	}

	pair := url.QueryEscape(param) + "=" + url.QueryEscape(token)

	var pairs []string
	replaced := false
	if u.RawQuery != "" {
		for _, part := range strings.Split(u.RawQuery, "&") {
			key, _, _ := strings.Cut(part, "=")
			if k, err := url.QueryUnescape(key); err == nil && k == param {
				if !replaced {
					pairs = append(pairs, pair)
					replaced = true
				}
				continue
			}
			pairs = append(pairs, part)
		}
	}
	if !replaced {
		pairs = append(pairs, pair)
	}

	u.RawQuery = strings.Join(pairs, "&")
	u.ForceQuery = false
	return u.String(), nil
}
