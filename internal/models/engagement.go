package models

import (
	"time"
)

// Category identifies one of the per-listing engagement logs.
type Category string

const (
	CategoryInterest Category = "interest"
	CategoryHelp     Category = "help"
	CategoryContact  Category = "contact"
	CategoryReport   Category = "report"
	CategorySoldOut  Category = "soldOut"
	CategoryFavorite Category = "favorite"
)

// ParseCategory maps a URL path segment to a Category.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryInterest, CategoryHelp, CategoryContact, CategoryReport, CategorySoldOut, CategoryFavorite:
		return Category(s), true
	}
	// Route aliases used by the public API.
	switch s {
	case "sold-out":
		return CategorySoldOut, true
	}
	return "", false
}

// EngagementEntry is a single actor's record inside an engagement log.
// Category-specific fields are omitted from BSON when unused.
type EngagementEntry struct {
	PhoneNumber      string    `bson:"phoneNumber" json:"phoneNumber"`
	Date             time.Time `bson:"date" json:"date"`
	SelectHelpReason string    `bson:"selectHelpReason,omitempty" json:"selectHelpReason,omitempty"`
	Comment          string    `bson:"comment,omitempty" json:"comment,omitempty"`
	ReasonCode       string    `bson:"reasonCode,omitempty" json:"reasonCode,omitempty"`
	FreeText         string    `bson:"freeText,omitempty" json:"freeText,omitempty"`
}

// EngagementPayload carries the optional per-category fields of an add request.
type EngagementPayload struct {
	SelectHelpReason string `json:"selectHelpReason,omitempty"`
	Comment          string `json:"comment,omitempty"`
	ReasonCode       string `json:"reasonCode,omitempty"`
	FreeText         string `json:"freeText,omitempty"`
}

// ReportReasons is the fixed set of report reason codes.
var ReportReasons = []string{
	"Already Sold",
	"Wrong Information",
	"Not Responding",
	"Fraud",
	"Duplicate Ads",
	"Other",
}

// HelpReasons is the fixed set of help request reasons.
var HelpReasons = []string{
	"Need Loan Help",
	"Site Visit",
	"Documentation",
	"Price Negotiation",
	"Legal Advice",
	"Property Verification",
	"Rental Agreement",
	"EC Certificate",
	"Patta Transfer",
	"Other",
}

// IsReportReason reports whether code is a valid report reason.
func IsReportReason(code string) bool {
	return contains(ReportReasons, code)
}

// IsHelpReason reports whether reason is a valid help reason.
func IsHelpReason(reason string) bool {
	return contains(HelpReasons, reason)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
