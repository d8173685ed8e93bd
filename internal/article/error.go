package article

import "errors"

var ErrArticleNotFound = errors.New("article not found")
