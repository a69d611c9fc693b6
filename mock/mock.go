// Package mock is used to generate mock files for testing.
package mock

//go:generate mockgen -source ../platform/platform_iface.go -destination mock_platform/mock_platform_iface.go
//go:generate mockgen -source ../sessionstorage/sessionstorage_iface.go -destination mock_sessionstorage/mock_sessionstorage_iface.go
//go:generate mockgen -package session -source ../cookies.go -destination ../mock_cookies_test.go
