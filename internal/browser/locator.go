// internal/browser/locator.go
package browser

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type stepKind string

const (
	stepCSS         stepKind = "css"
	stepRole        stepKind = "role"
	stepText        stepKind = "text"
	stepPlaceholder stepKind = "placeholder"
	stepHasText     stepKind = "hasText"
)

type step struct {
	Kind  stepKind `json:"kind"`
	Value string   `json:"value"`
	Name  string   `json:"name,omitempty"`
}

// Locator describes how to find elements as a chain of steps, each resolved
// inside the matches of the previous one. It is a value: every builder method
// returns a new Locator and leaves the receiver untouched. Nothing is queried
// until a Page acts on it.
//
// Text, role name and placeholder matching is case-insensitive substring
// matching on whitespace-normalized text.
type Locator struct {
	steps []step
}

// Root is the whole document.
func Root() Locator { return Locator{} }

// CSS locates elements matching selector anywhere in the document.
func CSS(selector string) Locator { return Root().Locate(selector) }

func (l Locator) with(s step) Locator {
	return Locator{steps: append(slices.Clip(l.steps), s)}
}

// Locate narrows to descendants matching a CSS selector.
func (l Locator) Locate(selector string) Locator {
	return l.with(step{Kind: stepCSS, Value: selector})
}

// Filter keeps only current matches whose text contains text.
func (l Locator) Filter(hasText string) Locator {
	return l.with(step{Kind: stepHasText, Value: hasText})
}

// ByRole narrows to descendants with the given ARIA role whose accessible
// name contains name. An empty name matches any.
func (l Locator) ByRole(role, name string) Locator {
	return l.with(step{Kind: stepRole, Value: role, Name: name})
}

// ByText narrows to the innermost descendants whose text contains text.
func (l Locator) ByText(text string) Locator {
	return l.with(step{Kind: stepText, Value: text})
}

// ByPlaceholder narrows to descendants whose placeholder contains text.
func (l Locator) ByPlaceholder(text string) Locator {
	return l.with(step{Kind: stepPlaceholder, Value: text})
}

// IsRoot reports whether the locator has no steps.
func (l Locator) IsRoot() bool { return len(l.steps) == 0 }

// String renders the chain in a compact engine-style notation, used in logs,
// error messages and test doubles.
func (l Locator) String() string {
	if l.IsRoot() {
		return ":root"
	}
	parts := make([]string, len(l.steps))
	for i, s := range l.steps {
		switch s.Kind {
		case stepRole:
			parts[i] = fmt.Sprintf("role=%s[name=%s]", s.Value, strconv.Quote(s.Name))
		case stepHasText:
			parts[i] = fmt.Sprintf("has-text=%s", strconv.Quote(s.Value))
		case stepCSS:
			parts[i] = s.Value
		default:
			parts[i] = fmt.Sprintf("%s=%s", s.Kind, strconv.Quote(s.Value))
		}
	}
	return strings.Join(parts, " >> ")
}

// probe compiles the locator into a JS expression that resolves it and
// returns a probeResult. Non-empty ref tags the first visible match with
// refAttr so chromedp can address it by selector.
func (l Locator) probe(ref string) (string, error) {
	steps, err := json.Marshal(l.steps)
	if err != nil {
		return "", fmt.Errorf("encoding locator %s: %w", l, err)
	}
	return fmt.Sprintf("(%s)(%s, %s, %s)", resolverJS, steps, strconv.Quote(refAttr), strconv.Quote(ref)), nil
}

const refAttr = "data-stagehand-ref"

// probeResult is what the resolver reports about a locator's matches.
type probeResult struct {
	Count   int    `json:"count"`
	Visible bool   `json:"visible"`
	Text    string `json:"text"`
	Value   string `json:"value"`
	Tagged  bool   `json:"tagged"`
}

const resolverJS = `function(steps, refAttr, ref) {
	const norm = (s) => (s || '').replace(/\s+/g, ' ').trim();
	const has = (hay, needle) => norm(hay).toLowerCase().includes(norm(needle).toLowerCase());
	const textOf = (el) => el.innerText !== undefined ? el.innerText : el.textContent;
	const visible = (el) => {
		const r = el.getBoundingClientRect();
		const st = window.getComputedStyle(el);
		return r.width > 0 && r.height > 0 && st.visibility !== 'hidden' && st.display !== 'none';
	};
	const roleOf = (el) => {
		const explicit = el.getAttribute('role');
		if (explicit) return explicit.split(' ')[0];
		const tag = el.tagName.toLowerCase();
		const type = (el.getAttribute('type') || '').toLowerCase();
		if (tag === 'button') return 'button';
		if (tag === 'input' && ['button', 'submit', 'reset', 'image'].includes(type)) return 'button';
		if (tag === 'input' && type === 'checkbox') return 'checkbox';
		if (tag === 'input' && type === 'radio') return 'radio';
		if (tag === 'input' || tag === 'textarea') return 'textbox';
		if (tag === 'a' && el.hasAttribute('href')) return 'link';
		if (/^h[1-6]$/.test(tag)) return 'heading';
		if (tag === 'select') return 'combobox';
		if (tag === 'img') return 'img';
		return '';
	};
	const nameOf = (el) => {
		const label = el.getAttribute('aria-label');
		if (label) return label;
		const tag = el.tagName.toLowerCase();
		if (tag === 'input') return el.value || el.getAttribute('placeholder') || '';
		if (tag === 'img') return el.getAttribute('alt') || '';
		return textOf(el);
	};
	const all = (root) => Array.from(root.querySelectorAll('*'));

	document.querySelectorAll('[' + refAttr + ']').forEach((el) => el.removeAttribute(refAttr));

	let scope = [document];
	for (const s of steps) {
		let next = [];
		if (s.kind === 'hasText') {
			next = scope.filter((el) => el !== document && has(textOf(el), s.value));
		} else {
			for (const root of scope) {
				switch (s.kind) {
				case 'css':
					next.push(...root.querySelectorAll(s.value));
					break;
				case 'role':
					next.push(...all(root).filter((el) => roleOf(el) === s.value && (!s.name || has(nameOf(el), s.name))));
					break;
				case 'placeholder':
					next.push(...Array.from(root.querySelectorAll('[placeholder]')).filter((el) => has(el.getAttribute('placeholder'), s.value)));
					break;
				case 'text': {
					const hits = all(root).filter((el) => has(textOf(el), s.value) || (el.tagName === 'INPUT' && ['button', 'submit'].includes(el.type) && has(el.value, s.value)));
					next.push(...hits.filter((el) => !hits.some((other) => other !== el && el.contains(other))));
					break;
				}
				}
			}
		}
		scope = Array.from(new Set(next));
	}

	const els = scope.filter((el) => el !== document);
	const first = els.find(visible) || els[0];
	const out = {count: els.length, visible: els.some(visible), text: '', value: '', tagged: false};
	if (first) {
		out.text = norm(textOf(first));
		out.value = first.value !== undefined ? String(first.value) : '';
		if (ref && visible(first)) {
			first.setAttribute(refAttr, ref);
			out.tagged = true;
		}
	}
	return out;
}`
