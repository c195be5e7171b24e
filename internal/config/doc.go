// Package config provides the gateway's configuration layer.
//
// Configuration is assembled from three sources with increasing precedence:
//
//  1. Built-in defaults (Default), which carry the contractual security and
//     processing constants from constants.go.
//  2. An optional YAML file.
//  3. Environment variables with the INGEST prefix (envconfig).
//
// The merged result is validated with go-playground/validator before any
// component sees it. Components never read configuration from ambient
// state; they receive an immutable Config (or a Paths value derived from
// it) at construction time.
package config
