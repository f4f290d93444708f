// Package docs : описание API для /swagger/*, в формате вывода swag init. После изменения аннотаций хендлеров файл обновляется вместе с ними
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login/": {
            "post": {
                "description": "Проверяет email и пароль, выставляет cookie access_token, refresh_token и csrftoken",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Аутентификация пользователя",
                "parameters": [
                    {
                        "description": "Тело запроса",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/requestresponse.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Профиль пользователя, токены в cookie", "schema": {"$ref": "#/definitions/requestresponse.LoginResponse"}},
                    "400": {"description": "Некорректный JSON или неверные учетные данные", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            }
        },
        "/logout/": {
            "post": {
                "description": "Добавляет refresh токен из cookie в черный список и удаляет auth cookie. Требует заголовок X-CSRFToken",
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Завершение сессии",
                "parameters": [
                    {"type": "string", "description": "Значение cookie csrftoken", "name": "X-CSRFToken", "in": "header", "required": true}
                ],
                "responses": {
                    "205": {"description": "Reset Content", "schema": {"$ref": "#/definitions/requestresponse.MessageResponse"}},
                    "400": {"description": "Не удалось отозвать токен", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "401": {"description": "Нет refresh токена", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "403": {"description": "CSRF проверка не пройдена", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            }
        },
        "/me/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Профиль текущего пользователя",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Profile"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            },
            "patch": {
                "description": "Меняет email. Требует заголовок X-CSRFToken",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Изменение профиля текущего пользователя",
                "parameters": [
                    {"type": "string", "description": "Значение cookie csrftoken", "name": "X-CSRFToken", "in": "header", "required": true},
                    {
                        "description": "Изменяемые поля",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/requestresponse.UpdateProfileRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Profile"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            }
        },
        "/register/": {
            "post": {
                "description": "Создает пользователя. Вход не выполняется, cookie не выставляются",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Регистрация пользователя",
                "parameters": [
                    {
                        "description": "Данные пользователя",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/requestresponse.RegisterRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Profile"}},
                    "400": {"description": "Ошибки валидации по полям", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            }
        },
        "/token/refresh/": {
            "post": {
                "description": "Выпускает новый access токен по cookie refresh_token. Refresh токен не меняется",
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Обновление access токена",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/requestresponse.MessageResponse"}},
                    "401": {"description": "Нет refresh токена или он невалиден", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.Profile": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "uuid": {"type": "string"}
            }
        },
        "requestresponse.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}},
                "text": {"type": "string", "example": "неверные учетные данные"}
            }
        },
        "requestresponse.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/requestresponse.ErrorDetail"}
            }
        },
        "requestresponse.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "a@b.com"},
                "password": {"type": "string", "example": "P@ssw0rd123"}
            }
        },
        "requestresponse.LoginResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/model.Profile"}
            }
        },
        "requestresponse.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "access токен успешно обновлен"}
            }
        },
        "requestresponse.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "a@b.com"},
                "password": {"type": "string", "example": "P@ssw0rd!"}
            }
        },
        "requestresponse.UpdateProfileRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "new@b.com"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "cookie-auth-server",
	Description:      "JWT аутентификация через cookie с CSRF защитой",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
