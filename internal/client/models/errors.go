// Package models holds the client-side data model of the family organizer:
// users, recipes, their tags and the request/response bodies of the REST API.
package models

import "errors"

var ErrUnknownTag = errors.New("unknown recipe tag")
