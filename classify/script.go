package classify

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nino-chavez/brand-site-sub018/types"
)

var (
	scriptOnce sync.Once
	script     string
)

// Script returns a JavaScript function declaration named __rtClassify.
//
//	__rtClassify(message) -> {type, severity}
//
// The function body is generated from TypeRules and the severity rules in
// SeverityOf, so the page and the harness agree on every message.
func Script() string {
	scriptOnce.Do(func() {
		rules, err := json.Marshal(TypeRules)
		if err != nil {
			// TypeRules is static data of strings; Marshal cannot fail.
			panic(fmt.Sprintf("classify: marshal rules: %v", err))
		}
		script = fmt.Sprintf(classifyTemplate,
			rules,
			jsString(UncaughtMarker),
			jsString(string(types.ErrorInfiniteLoop)),
			jsString(string(types.ErrorContextMissing)),
			jsString(string(types.ErrorNullAccess)),
			jsString(string(types.ErrorTypeError)),
			jsString(string(types.ErrorNetwork)),
			jsString(string(types.ErrorIntegration)),
			jsString(string(types.ErrorUnknown)),
		)
	})
	return script
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

const classifyTemplate = `function __rtClassify(message) {
  var rules = %s;
  var text = String(message == null ? '' : message);
  var lower = text.toLowerCase();
  var type = %[9]s;
  outer: for (var i = 0; i < rules.length; i++) {
    for (var j = 0; j < rules[i].patterns.length; j++) {
      if (lower.indexOf(rules[i].patterns[j]) !== -1) { type = rules[i].type; break outer; }
    }
  }
  var severity = 'LOW';
  if (type === %[3]s || type === %[4]s || text.indexOf(%[2]s) !== -1) {
    severity = 'CRITICAL';
  } else if (type === %[5]s || type === %[6]s) {
    severity = 'HIGH';
  } else if (type === %[7]s || type === %[8]s) {
    severity = 'MEDIUM';
  }
  return { type: type, severity: severity };
}`
