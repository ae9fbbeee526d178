// Package models contains GORM persistence models that map domain entities to
// database tables. Models carry storage concerns (column types, indexes,
// foreign keys) and convert to and from domain types via ToDomain/FromDomain,
// keeping the domain layer free of GORM tags.
package models
