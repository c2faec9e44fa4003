package locate

import (
	"fmt"
	"slices"
	"strings"
)

type Strategy string

const (
	ClassName       Strategy = "ClassName"
	CSSSelector     Strategy = "CSSSelector"
	ID              Strategy = "ID"
	LinkText        Strategy = "LinkText"
	Name            Strategy = "Name"
	PartialLinkText Strategy = "PartialLinkText"
	TagName         Strategy = "TagName"
	XPath           Strategy = "XPath"
)

func Strategies() []Strategy {
	return []Strategy{
		ClassName,
		CSSSelector,
		ID,
		LinkText,
		Name,
		PartialLinkText,
		TagName,
		XPath,
	}
}

type InvalidStrategyError struct {
	Name string
}

func (e *InvalidStrategyError) Error() string {
	names := make([]string, 0, len(Strategies()))
	for _, s := range Strategies() {
		names = append(names, string(s))
	}
	return fmt.Sprintf("invalid locator strategy %q, must be one of: %s", e.Name, strings.Join(names, ", "))
}

func NewInvalidStrategyError(name string) error {
	return &InvalidStrategyError{
		Name: name,
	}
}

// ParseStrategy matches name exactly; there are no aliases.
func ParseStrategy(name string) (Strategy, error) {
	if s := Strategy(name); slices.Contains(Strategies(), s) {
		return s, nil
	}
	return "", NewInvalidStrategyError(name)
}
