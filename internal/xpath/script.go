package xpath

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var ErrEmptyText = errors.New("search text is empty")

type ScriptExecutor interface {
	ExecuteScript(script string) (any, error)
}

// The script body runs inside a function; a null result means no element contains the text.
const scriptTemplate = `const searchText = %s;
function literal(s) {
  if (s.indexOf("'") === -1) {
    return "'" + s + "'";
  }
  if (s.indexOf('"') === -1) {
    return '"' + s + '"';
  }
  return "concat('" + s.split("'").join("', \"'\", '") + "')";
}
function getXPath(node) {
  if (node.nodeType === Node.DOCUMENT_NODE) {
    return "";
  }
  const element = node instanceof Element ? node : node.parentNode;
  const tagName = element.tagName.toLowerCase();
  const parent = element.parentNode;
  if (!parent) {
    return "/" + tagName;
  }
  const siblings = Array.from(parent.childNodes).filter(function (sibling) {
    return sibling.nodeType === Node.ELEMENT_NODE && sibling.tagName.toLowerCase() === tagName;
  });
  return getXPath(parent) + "/" + tagName + "[" + (siblings.indexOf(element) + 1) + "]";
}
const result = document.evaluate(
  "//*[contains(text(), " + literal(searchText) + ")]",
  document,
  null,
  XPathResult.FIRST_ORDERED_NODE_TYPE,
  null
);
const node = result.singleNodeValue;
if (node === null) {
  return null;
}
const identified = node.closest("[name],[id]");
return {
  path: getXPath(node),
  anchor: identified === null ? "" : (identified.getAttribute("id") || identified.getAttribute("name") || ""),
};`

func Script(text string) (string, error) {
	needle := strings.TrimSpace(text)
	if needle == "" {
		return "", ErrEmptyText
	}
	literal, err := json.Marshal(needle)
	if err != nil {
		return "", fmt.Errorf("failure encoding search text: %w", err)
	}
	return fmt.Sprintf(scriptTemplate, literal), nil
}

// LocateByText returns the positional path of the first element whose text contains text.
func LocateByText(executor ScriptExecutor, text string, logger *slog.Logger) (string, bool, error) {
	script, err := Script(text)
	if err != nil {
		return "", false, err
	}
	result, err := executor.ExecuteScript(script)
	if err != nil {
		return "", false, err
	}
	if result == nil {
		return "", false, nil
	}
	fields, ok := result.(map[string]interface{})
	if !ok {
		return "", false, fmt.Errorf("unexpected script result of type %T", result)
	}
	path, ok := fields["path"].(string)
	if !ok || path == "" {
		return "", false, fmt.Errorf("script result has no path: %v", fields)
	}
	anchor, _ := fields["anchor"].(string)
	logger.Debug("located element by text",
		slog.String("text", strings.TrimSpace(text)),
		slog.String("path", path),
		slog.String("anchor", anchor),
	)
	return path, true, nil
}

// Literal quotes s as an XPath 1.0 string literal.
func Literal(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	return "concat('" + strings.Join(strings.Split(s, "'"), `', "'", '`) + "')"
}
