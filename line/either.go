// Copyright 2025 Michael J. Fromberger. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package line

// An Either holds either a primary value of type T or an alternative value
// of type E, but never both. It is used to sort streams whose elements are
// themselves fallible, with the failures carried through the sort alongside
// the successes.
type Either[T, E any] struct {
	val T
	alt E
	ok  bool
}

// Value constructs an Either holding the primary value v.
func Value[T, E any](v T) Either[T, E] { return Either[T, E]{val: v, ok: true} }

// Alt constructs an Either holding the alternative value v.
func Alt[T, E any](v E) Either[T, E] { return Either[T, E]{alt: v} }

// Value reports whether e holds a primary value, and returns it if so.
// If not, the returned value is the zero of type T.
func (e Either[T, E]) Value() (T, bool) { return e.val, e.ok }

// Alt reports whether e holds an alternative value, and returns it if so.
// If not, the returned value is the zero of type E.
func (e Either[T, E]) Alt() (E, bool) {
	if e.ok {
		var zero E
		return zero, false
	}
	return e.alt, true
}

// EitherOf combines a codec for the primary branch with a codec for the
// alternative branch into a codec for [Either] values. A line begins with
// '1' for the primary branch or '0' for the alternative, followed by the
// branch encoding; any other leading character makes the line invalid.
func EitherOf[T, E any](val Codec[T], alt Codec[E]) Codec[Either[T, E]] {
	return eitherCodec[T, E]{val: val, alt: alt}
}

type eitherCodec[T, E any] struct {
	val Codec[T]
	alt Codec[E]
}

func (c eitherCodec[T, E]) LineLen(e Either[T, E]) int {
	if e.ok {
		return 1 + c.val.LineLen(e.val)
	}
	return 1 + c.alt.LineLen(e.alt)
}

func (c eitherCodec[T, E]) ToLine(e Either[T, E]) string {
	if e.ok {
		return "1" + c.val.ToLine(e.val)
	}
	return "0" + c.alt.ToLine(e.alt)
}

func (c eitherCodec[T, E]) FromLine(s string) (Either[T, E], error) {
	var zero Either[T, E]
	if s == "" {
		return zero, Invalid(s)
	}
	switch s[0] {
	case '1':
		v, err := c.val.FromLine(s[1:])
		if err != nil {
			return zero, err
		}
		return Value[T, E](v), nil
	case '0':
		v, err := c.alt.FromLine(s[1:])
		if err != nil {
			return zero, err
		}
		return Alt[T](v), nil
	default:
		return zero, Invalid(s)
	}
}
