package sqlinline

const QEnsureVideoGenerationsTable = `--sql 3c1f6a0e-5d2b-4e7a-9b41-2a8f0c6d7e15
create table if not exists video_generations (
    id             text primary key,
    prompt         text not null,
    state          text not null,
    status         text not null default '',
    storage_key    text not null default '',
    file_size      bigint not null default 0,
    operation_name text not null default '',
    model          text not null default '',
    error_message  text not null default '',
    created_at     timestamptz not null default now()
);
`

const QEnsureVideoGenerationsIndex = `--sql 9e4b2d71-0c3a-4f68-8a15-6b7d9e2f4c03
create index if not exists video_generations_created_at_idx
    on video_generations (created_at desc);
`

const QInsertVideoGeneration = `--sql 5a7e9c2b-1d4f-4b3a-8e60-0f2c7d9a1b84
insert into video_generations (id, prompt, state, status, storage_key, file_size, operation_name, model, error_message)
values ($1::text, $2::text, $3::text, $4::text, $5::text, $6::bigint, $7::text, $8::text, $9::text)
on conflict (id) do nothing;
`

const QSelectRecentVideoGenerations = `--sql d2f86b13-7a4c-4e9d-b051-3c8e2a6f7d90
select id, prompt, state, status, storage_key, file_size, operation_name, model, error_message, created_at
from video_generations
order by created_at desc
limit $1::int;
`

const QSelectVideoGeneration = `--sql 7b0d3e58-2c9f-4a16-9d7e-e4a1c5b8f263
select id, prompt, state, status, storage_key, file_size, operation_name, model, error_message, created_at
from video_generations
where id = $1::text;
`
