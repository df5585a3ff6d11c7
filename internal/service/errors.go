package service

import "errors"

var (
	ErrRegularSeasonInProgress = errors.New("regular season has not concluded")
	ErrUnknownBracketWeek      = errors.New("week is not a bracket week")
	ErrPlaceholderMissing      = errors.New("downstream bracket game missing")
	ErrSlotOccupied            = errors.New("bracket slot already occupied")
	ErrNoRoute                 = errors.New("no bracket route for game")
	ErrOwnerNotFound           = errors.New("owner not found")
)
