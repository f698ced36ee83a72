package model

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
)

// CredentialVersion is the current encoding version of Credential
const CredentialVersion = 1

// Credential is the OAuth token material of one profile. Stores keep it as the
// opaque blob returned by Encode.
type Credential struct {
	Version      int       `json:"v"`
	AccessToken  string    `json:"access_token" masq:"secret"`
	RefreshToken string    `json:"refresh_token" masq:"secret"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitzero"`
	Scope        string    `json:"scope,omitempty"`
}

// NewCredential builds a Credential from an oauth2 token
func NewCredential(token *oauth2.Token) *Credential {
	cred := &Credential{
		Version:      CredentialVersion,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}
	if scope, ok := token.Extra("scope").(string); ok {
		cred.Scope = scope
	}
	return cred
}

// Token converts the credential back into an oauth2 token
func (x *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  x.AccessToken,
		RefreshToken: x.RefreshToken,
		TokenType:    x.TokenType,
		Expiry:       x.Expiry,
	}
}

// Encode serializes the credential into its storage blob
func (x *Credential) Encode() ([]byte, error) {
	c := *x
	c.Version = CredentialVersion
	raw, err := json.Marshal(&c)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode credential")
	}
	return raw, nil
}

// DecodeCredential parses a storage blob. Missing, corrupt and unknown-version blobs
// are all reported as ErrCredentialsNotFound.
func DecodeCredential(raw []byte) (*Credential, error) {
	if len(raw) == 0 {
		return nil, goerr.Wrap(ErrCredentialsNotFound, "empty credential blob")
	}

	var cred Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return nil, goerr.Wrap(ErrCredentialsNotFound, "undecodable credential blob", goerr.V("error", err.Error()))
	}
	if cred.Version != CredentialVersion {
		return nil, goerr.Wrap(ErrCredentialsNotFound, "unsupported credential version", goerr.V("version", cred.Version))
	}
	if cred.AccessToken == "" && cred.RefreshToken == "" {
		return nil, goerr.Wrap(ErrCredentialsNotFound, "credential has no token")
	}

	return &cred, nil
}

func (x Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("version", x.Version),
		slog.Int("access_token.len", len(x.AccessToken)),
		slog.Bool("has_refresh_token", x.RefreshToken != ""),
		slog.Time("expiry", x.Expiry),
		slog.String("scope", x.Scope),
	)
}
