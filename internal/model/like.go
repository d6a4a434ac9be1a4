package model

import "fmt"

type LikeKind string

const (
	LikeKindVideo   LikeKind = "video"
	LikeKindComment LikeKind = "comment"
	LikeKindTweet   LikeKind = "tweet"
)

func (k LikeKind) Valid() bool {
	switch k {
	case LikeKindVideo, LikeKindComment, LikeKindTweet:
		return true
	}
	return false
}

// LikeTarget references exactly one likeable entity. Its fields are
// unexported so a target can only come from the constructors below.
type LikeTarget struct {
	kind LikeKind
	id   string
}

func NewLikeTarget(kind LikeKind, id string) (LikeTarget, error) {
	if !kind.Valid() {
		return LikeTarget{}, fmt.Errorf("%w: unknown like target %q", ErrInvalidInput, kind)
	}
	if id == "" {
		return LikeTarget{}, fmt.Errorf("%w: like target id is required", ErrInvalidInput)
	}
	return LikeTarget{kind: kind, id: id}, nil
}

func VideoTarget(id string) LikeTarget   { return LikeTarget{kind: LikeKindVideo, id: id} }
func CommentTarget(id string) LikeTarget { return LikeTarget{kind: LikeKindComment, id: id} }
func TweetTarget(id string) LikeTarget   { return LikeTarget{kind: LikeKindTweet, id: id} }

func (t LikeTarget) Kind() LikeKind { return t.kind }
func (t LikeTarget) ID() string     { return t.id }
func (t LikeTarget) IsZero() bool   { return t.kind == "" }

func (t LikeTarget) String() string {
	return string(t.kind) + ":" + t.id
}
