/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package token

import (
	"fmt"
	"strings"
)

// Named returns the token for a rendered token string such as "int",
// "example.Point" or "map<string,slice<int>>", defining declared-only tokens
// for any part that does not exist yet. It accepts exactly what
// Token.String produces for names free of '<', '>' and ','.
func (u *Universe) Named(s string) (Token, error) {
	p := parser{src: s}
	tok, err := p.token(u)
	if err != nil {
		return Token{}, err
	}
	if p.pos != len(p.src) {
		return Token{}, fmt.Errorf("%w: unexpected %q at %d in %q", ErrSyntax, p.src[p.pos], p.pos, s)
	}
	return tok, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) token(u *Universe) (Token, error) {
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune("<>,", rune(p.src[p.pos])) {
		p.pos++
	}
	name := strings.TrimSpace(p.src[start:p.pos])
	if name == "" {
		return Token{}, fmt.Errorf("%w: missing name at %d in %q", ErrSyntax, start, p.src)
	}
	if p.pos == len(p.src) || p.src[p.pos] != '<' {
		return u.Define(name), nil
	}

	p.pos++ // '<'
	var params []Token
	for {
		param, err := p.token(u)
		if err != nil {
			return Token{}, err
		}
		params = append(params, param)
		if p.pos == len(p.src) {
			return Token{}, fmt.Errorf("%w: unterminated parameter list in %q", ErrSyntax, p.src)
		}
		c := p.src[p.pos]
		p.pos++
		if c == '>' {
			break
		}
		if c != ',' {
			return Token{}, fmt.Errorf("%w: unexpected %q at %d in %q", ErrSyntax, c, p.pos-1, p.src)
		}
	}
	return u.Define(name, params...), nil
}
