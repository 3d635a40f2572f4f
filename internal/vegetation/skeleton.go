// Package vegetation grows plants from grammar expansions: a turtle walks
// the expanded string to build a branch skeleton, Strahler numbers size the
// branches, and each branch is emitted as a tapered cone.
package vegetation

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Flower is a leaf marker attached to a branch.
type Flower struct {
	Kind      rune
	Transform mgl64.Mat4
}

// Branch is one node of the skeleton arena. Parent is an index into the
// same arena, -1 for the root.
type Branch struct {
	Size         int
	Strahler     int
	BiggestChild int
	Parent       int
	Start        mgl64.Mat4
	End          mgl64.Mat4
	Flowers      []Flower
}

// Skeleton is a rooted branch tree stored in creation order, so every
// parent precedes its children.
type Skeleton struct {
	Branches []Branch
}

// IsFlower reports whether sym is one of the leaf marker symbols.
func IsFlower(sym rune) bool {
	switch sym {
	case 'X', 'P', 'T', 'L':
		return true
	}
	return false
}

// Interpret walks symbols from base. Each F grows the current branch by one
// segment; rotations turn both ends of the current branch by angle degrees;
// brackets push and pop child branches. Unknown symbols are ignored.
func Interpret(symbols string, angle, segment float64, base mgl64.Mat4) *Skeleton {
	s := &Skeleton{Branches: []Branch{{Strahler: 1, Parent: -1, Start: base, End: base}}}
	rad := mgl64.DegToRad(angle)
	current := 0
	for _, sym := range symbols {
		b := &s.Branches[current]
		switch sym {
		case 'F':
			b.Size++
			b.End = b.End.Mul4(mgl64.Translate3D(0, segment, 0))
		case '+':
			b.rotate(mgl64.HomogRotate3DZ(rad))
		case '-':
			b.rotate(mgl64.HomogRotate3DZ(-rad))
		case '^':
			b.rotate(mgl64.HomogRotate3DY(-rad))
		case '&':
			b.rotate(mgl64.HomogRotate3DY(rad))
		case '<':
			b.rotate(mgl64.HomogRotate3DX(rad))
		case '>':
			b.rotate(mgl64.HomogRotate3DX(-rad))
		case '|':
			b.rotate(mgl64.HomogRotate3DX(mgl64.DegToRad(180)))
		case '[':
			end := b.End
			s.Branches = append(s.Branches, Branch{Strahler: 1, Parent: current, Start: end, End: end})
			current = len(s.Branches) - 1
		case ']':
			if b.Parent >= 0 {
				current = b.Parent
			}
		default:
			if IsFlower(sym) {
				b.Flowers = append(b.Flowers, Flower{Kind: sym, Transform: b.End})
			}
		}
	}
	return s
}

func (b *Branch) rotate(r mgl64.Mat4) {
	b.Start = b.Start.Mul4(r)
	b.End = b.End.Mul4(r)
}

// AssignStrahler ranks branches from the last created back to the first
// child. Pure leaf branches (size 0) do not rank their parent. Equal ranked
// siblings raise their parent one above the shared rank.
func (s *Skeleton) AssignStrahler() {
	br := s.Branches
	for i := len(br) - 1; i > 0; i-- {
		if br[i].Size == 0 {
			continue
		}
		p := br[i].Parent
		if p < 0 || p >= len(br) {
			continue
		}
		if br[p].Strahler < br[i].Strahler {
			br[p].Strahler = br[i].Strahler
			continue
		}
		if br[p].Strahler != br[i].Strahler {
			continue
		}
		for j := range br {
			if j == i || br[j].Parent != p || br[j].Size == 0 {
				continue
			}
			if br[j].Strahler == br[i].Strahler {
				br[p].Strahler = br[i].Strahler + 1
				br[p].BiggestChild = br[i].Strahler
				break
			}
			if br[i].Strahler < br[j].Strahler {
				br[p].Strahler = br[j].Strahler
				br[p].BiggestChild = br[j].Strahler
				break
			}
		}
	}
}

// Grown returns the number of branches with a non-zero size.
func (s *Skeleton) Grown() int {
	n := 0
	for _, b := range s.Branches {
		if b.Size > 0 {
			n++
		}
	}
	return n
}

// FlowerCount returns the number of flower markers.
func (s *Skeleton) FlowerCount() int {
	n := 0
	for _, b := range s.Branches {
		n += len(b.Flowers)
	}
	return n
}
