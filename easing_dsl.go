package motioner

import (
	"fmt"
	"strconv"
	"strings"
)

// DSL returns the canonical textual form of the easing, the exact shape the
// scene-description language accepts. Numeric arguments are formatted with
// three decimal places so re-serialization is stable and diff-friendly.
func (e Easing) DSL() string {
	switch e.Kind {
	case EasingLinear, EasingSine, EasingExpo, EasingCirc, EasingStep:
		return e.Kind.String()
	case EasingEaseIn, EasingEaseOut, EasingEaseInOut:
		return fmt.Sprintf("%s(power = %.3f)", e.Kind, e.Power)
	case EasingBezier:
		return fmt.Sprintf("bezier(p1 = (%.3f, %.3f), p2 = (%.3f, %.3f))",
			e.P1.X, e.P1.Y, e.P2.X, e.P2.Y)
	case EasingSpring:
		return fmt.Sprintf("spring(damping = %.3f, stiffness = %.3f, mass = %.3f)",
			e.Damping, e.Stiffness, e.Mass)
	case EasingElastic:
		return fmt.Sprintf("elastic(amplitude = %.3f, period = %.3f)",
			e.Amplitude, e.Period)
	case EasingBounce:
		return fmt.Sprintf("bounce(bounciness = %.3f)", e.Bounciness)
	case EasingCustom:
		pts := make([]string, len(e.Points))
		for i, p := range e.Points {
			pts[i] = fmt.Sprintf("(%.3f, %.3f)", p.Pos.X, p.Pos.Y)
		}
		return fmt.Sprintf("custom(points = [%s])", strings.Join(pts, ", "))
	case EasingCustomBezier:
		pts := make([]string, len(e.Points))
		for i, p := range e.Points {
			pts[i] = fmt.Sprintf("((%.3f, %.3f), (%.3f, %.3f), (%.3f, %.3f))",
				p.Pos.X, p.Pos.Y,
				p.HandleLeft.X, p.HandleLeft.Y,
				p.HandleRight.X, p.HandleRight.Y)
		}
		return fmt.Sprintf("custom_bezier(points = [%s])", strings.Join(pts, ", "))
	default:
		return "linear"
	}
}

// ParseEasing parses the textual easing form back into an Easing value.
//
// ParseEasing is the inverse of [Easing.DSL]. Named arguments may appear in
// any order; omitted arguments take their documented defaults. Malformed
// input resolves to Linear so the surrounding description-language parser
// stays resilient; easing text is authored content, not trusted input, and
// a typo should degrade the animation rather than reject the document.
func ParseEasing(s string) Easing {
	s = strings.TrimSuffix(strings.TrimSpace(s), ",")

	switch s {
	case "linear":
		return Linear()
	case "sine":
		return Sine()
	case "expo":
		return Expo()
	case "circ":
		return Circ()
	case "step":
		return Step()
	}

	// ease_in_out must match before ease_in.
	switch {
	case strings.HasPrefix(s, "ease_in_out"):
		return EaseInOut(namedParam(s, "power", DefaultPower))
	case strings.HasPrefix(s, "ease_in"):
		return EaseIn(namedParam(s, "power", DefaultPower))
	case strings.HasPrefix(s, "ease_out"):
		return EaseOut(namedParam(s, "power", DefaultPower))
	case strings.HasPrefix(s, "spring"):
		return Spring(
			namedParam(s, "damping", DefaultDamping),
			namedParam(s, "stiffness", DefaultStiffness),
			namedParam(s, "mass", DefaultMass),
		)
	case strings.HasPrefix(s, "elastic"):
		return Elastic(
			namedParam(s, "amplitude", DefaultAmplitude),
			namedParam(s, "period", DefaultPeriod),
		)
	case strings.HasPrefix(s, "bounce"):
		return Bounce(namedParam(s, "bounciness", DefaultBounciness))
	case strings.HasPrefix(s, "bezier") && !strings.HasPrefix(s, "custom_bezier"):
		p1, ok1 := namedPointParam(s, "p1")
		p2, ok2 := namedPointParam(s, "p2")
		if ok1 && ok2 {
			return Bezier(p1, p2)
		}
	case strings.HasPrefix(s, "custom_bezier"):
		return CustomBezier(parseBezierPoints(s))
	case strings.HasPrefix(s, "custom"):
		return Custom(parseCustomPoints(s))
	}

	return Linear()
}

// namedParam extracts a `name = <float>` argument, or returns def.
func namedParam(s, name string, def float32) float32 {
	needle := name + " ="
	pos := strings.Index(s, needle)
	if pos < 0 {
		return def
	}
	rest := strings.TrimSpace(s[pos+len(needle):])
	end := strings.IndexFunc(rest, func(r rune) bool {
		return r == ',' || r == ')' || r == ' '
	})
	if end < 0 {
		end = len(rest)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rest[:end]), 32)
	if err != nil {
		return def
	}
	return float32(v)
}

// namedPointParam extracts a `name = (x, y)` argument.
func namedPointParam(s, name string) (Vec2, bool) {
	needle := name + " ="
	pos := strings.Index(s, needle)
	if pos < 0 {
		return Vec2{}, false
	}
	p, _, ok := scanPoint(strings.TrimSpace(s[pos+len(needle):]))
	return p, ok
}

// scanPoint parses a leading `(x, y)` pair and returns the remainder after
// the closing parenthesis. Wrapping parentheses (custom_bezier groups) are
// stepped over so the innermost pair is read.
func scanPoint(s string) (Vec2, string, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return Vec2{}, s, false
	}
	for {
		j := open + 1
		for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
			j++
		}
		if j < len(s) && s[j] == '(' {
			open = j
			continue
		}
		break
	}
	closeIdx := strings.IndexByte(s[open:], ')')
	if closeIdx < 0 {
		return Vec2{}, s, false
	}
	closeIdx += open
	inner := s[open+1 : closeIdx]
	parts := strings.Split(inner, ",")
	if len(parts) != 2 {
		return Vec2{}, s, false
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 32)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 32)
	if errX != nil || errY != nil {
		return Vec2{}, s, false
	}
	return Vec2{X: float32(x), Y: float32(y)}, s[closeIdx+1:], true
}

// pointListBody returns the text between the brackets of `points = [...]`.
func pointListBody(s string) (string, bool) {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		return "", false
	}
	closeIdx := strings.LastIndexByte(s, ']')
	if closeIdx <= open {
		return "", false
	}
	return s[open+1 : closeIdx], true
}

// parseCustomPoints parses the `custom(points = [(t, v), ...])` list.
func parseCustomPoints(s string) []CurvePoint {
	body, ok := pointListBody(s)
	if !ok {
		return nil
	}
	var pts []CurvePoint
	for {
		p, rest, ok := scanPoint(body)
		if !ok {
			break
		}
		pts = append(pts, CurvePoint{Pos: p})
		body = rest
	}
	return pts
}

// parseBezierPoints parses the `custom_bezier(points = [((px, py), (lx, ly),
// (rx, ry)), ...])` list. Each group carries the point position followed by
// its incoming and outgoing tangent handles.
func parseBezierPoints(s string) []CurvePoint {
	body, ok := pointListBody(s)
	if !ok {
		return nil
	}
	var pts []CurvePoint
	for {
		pos, rest, ok := scanPoint(body)
		if !ok {
			break
		}
		left, rest, ok := scanPoint(rest)
		if !ok {
			break
		}
		right, rest, ok := scanPoint(rest)
		if !ok {
			break
		}
		pts = append(pts, CurvePoint{Pos: pos, HandleLeft: left, HandleRight: right})
		body = rest
	}
	return pts
}
