package model

import "lodge/shared/model"

const (
	TableName  = "providers"
	EntityName = "provider"

	FieldID          = "id"
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldLevel       = "level"
	FieldExternalUID = "external_uid"
	FieldLastLogin   = "last_login"
	FieldActive      = "active"
)

// Provider is an account holder who owns property listings. Password is the
// bcrypt hash of the local credential and stays empty for federated accounts;
// ExternalUID holds the identity-provider subject in that case.
type Provider struct {
	ID          string  `db:"id"`
	Name        string  `db:"name"`
	Email       string  `db:"email"`
	Password    string  `db:"password"`
	Level       string  `db:"level"`
	ExternalUID *string `db:"external_uid"`
	LastLogin   *string `db:"last_login"`
	Active      bool    `db:"active"`
	model.Metadata
}
