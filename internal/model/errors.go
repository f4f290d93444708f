package model

import "errors"

var (
	ErrNotFound       = errors.New("запись не найдена")
	ErrDuplicateEmail = errors.New("пользователь с таким email уже существует")
)
