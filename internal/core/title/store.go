// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package title

import "context"

// Repository defines persistence operations for titles.
//
// Reads hydrate Category, Genre and Rating. Writes persist CategoryID and,
// when non-nil, replace the genre links with GenreIDs.
type Repository interface {
	List(context context.Context, filter Filter, limit, offset int) ([]*Title, int, error)
	FindByID(context context.Context, id string) (*Title, error)
	Create(context context.Context, title *Title) error
	Update(context context.Context, title *Title) error
	Delete(context context.Context, id string) error
}
