package main

import (
	"context"
	"errors"

	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/models"
	"gorm.io/gorm"
)

// OAuthClient is a registered API client allowed to request tokens
type OAuthClient struct {
	gorm.Model
	ClientId string `gorm:"unique"`
	Secret   string
	Domain   string
}

// ClientStore resolves oauth2 clients from the database
type ClientStore struct {
	db *gorm.DB
}

func NewClientStore(db *gorm.DB) *ClientStore {
	return &ClientStore{db: db}
}

func (s *ClientStore) GetByID(ctx context.Context, id string) (oauth2.ClientInfo, error) {
	var client OAuthClient
	result := s.db.First(&client, "client_id = ?", id)
	if result.RowsAffected != 1 {
		return nil, errors.New("client not found")
	}
	return &models.Client{
		ID:     client.ClientId,
		Secret: client.Secret,
		Domain: client.Domain,
	}, nil
}
