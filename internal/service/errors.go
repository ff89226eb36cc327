package service

import "errors"

var (
	ErrGameNotFound = errors.New("game not found")
	ErrNotYourGame  = errors.New("you do not own this game")
	ErrGameFinished = errors.New("game is finished")
	ErrTurnBusy     = errors.New("turn resolution already in progress")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrSaveNotFound = errors.New("save not found")
	ErrInvalidSlot  = errors.New("invalid manual save slot")
	ErrInvalidName  = errors.New("invalid game name")
)
