package service

type JobGuard = jobGuard
