package service

import "time"

const (
	DefaultStoreTimeout = 5 * time.Second
	DefaultOfferParam   = "sub1"
)
