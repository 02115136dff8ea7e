// Package main Gstore Payments API
//
//	@title						Gstore Payments API
//	@version					1.0
//	@description				Charge creation and payment reconciliation for the Gstore storefront.
//
//	@contact.name				Gstore Support
//
//	@license.name				Proprietary
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Operator token. Format: "Bearer {token}"
//
//	@tag.name					Charges
//	@tag.description			Storefront charge creation
//
//	@tag.name					Webhooks
//	@tag.description			Provider notifications
//
//	@tag.name					Admin
//	@tag.description			Operator actions
//
//	@tag.name					Health
//	@tag.description			Service health
package main
